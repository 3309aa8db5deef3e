package stats

import "slices"

// CurvePoint is the share of games strictly above a half-integer line.
type CurvePoint struct {
	Threshold float64 `json:"threshold"`
	OverPct   float64 `json:"over_pct"`
}

// UnderPct is the complement of OverPct. Integer series never tie a
// half-integer line.
func (p CurvePoint) UnderPct() float64 { return 100 - p.OverPct }

// OverUnderCurve is the ascending list of betting lines for one series.
type OverUnderCurve struct {
	Games  int          `json:"games"`
	Points []CurvePoint `json:"points"`
}

// Empty reports whether the series had no games.
func (c OverUnderCurve) Empty() bool { return c.Games == 0 }

// BuildOverUnder evaluates the lines 0.5, 1.5, ... floor(max)+0.5.
func BuildOverUnder(series []int) OverUnderCurve {
	if len(series) == 0 {
		return OverUnderCurve{}
	}
	top := slices.Max(series)
	n := float64(len(series))

	c := OverUnderCurve{Games: len(series)}
	for k := 0; k <= top; k++ {
		line := float64(k) + 0.5
		over := 0
		for _, v := range series {
			if float64(v) > line {
				over++
			}
		}
		c.Points = append(c.Points, CurvePoint{Threshold: line, OverPct: 100 * float64(over) / n})
	}
	return c
}
