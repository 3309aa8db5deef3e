package stats

// TheoreticalSplit is the fitted-normal probability mass below and above a
// reference value, in percent.
type TheoreticalSplit struct {
	BelowPct float64 `json:"below_pct"`
	AbovePct float64 `json:"above_pct"`
}

// ReferenceResult compares a series against a reference value.
//
// Games exactly equal to the reference count in neither EmpiricalBelowPct nor
// EmpiricalAbovePct; their share is reported as EmpiricalEqualPct.
type ReferenceResult struct {
	Reference         float64           `json:"reference"`
	Games             int               `json:"games"`
	EmpiricalBelowPct float64           `json:"empirical_below_pct"`
	EmpiricalAbovePct float64           `json:"empirical_above_pct"`
	EmpiricalEqualPct float64           `json:"empirical_equal_pct"`
	Theoretical       *TheoreticalSplit `json:"theoretical,omitempty"`
	InsufficientData  bool              `json:"insufficient_data"`
}

// EvaluateReference splits series around ref. The theoretical split is set
// only when the series has a fitted curve.
func EvaluateReference(series []int, ref float64) ReferenceResult {
	res := ReferenceResult{Reference: ref, Games: len(series)}
	if len(series) == 0 {
		res.InsufficientData = true
		return res
	}

	var below, above, equal int
	for _, v := range series {
		x := float64(v)
		switch {
		case x < ref:
			below++
		case x > ref:
			above++
		default:
			equal++
		}
	}
	n := float64(len(series))
	res.EmpiricalBelowPct = 100 * float64(below) / n
	res.EmpiricalAbovePct = 100 * float64(above) / n
	res.EmpiricalEqualPct = 100 * float64(equal) / n

	if sum := Estimate(series); sum.HasCurve() {
		b := 100 * sum.normal().CDF(ref)
		res.Theoretical = &TheoreticalSplit{BelowPct: b, AbovePct: 100 - b}
	}
	return res
}
