// Package stats is the statistical core: distribution summaries, reference
// splits, period transition matrices and over/under curves. Every function is
// a pure computation over its inputs and allocates fresh results.
package stats

import (
	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultCurvePoints is the sampling resolution used when callers do not choose one.
const DefaultCurvePoints = 200

// curveHalfWidth is the number of standard deviations on each side of the mean
// covered by the density domain.
const curveHalfWidth = 4.0

// Point is one sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Band is a vertical guide line at a multiple of sigma from the mean.
type Band struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
}

// Summary describes one series: count, mean, population standard deviation
// and the order statistics shown in the stats box.
type Summary struct {
	Count            int     `json:"count"`
	Mean             float64 `json:"mean"`
	Sigma            float64 `json:"sigma"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Median           float64 `json:"median"`
	InsufficientData bool    `json:"insufficient_data"`
}

// Estimate summarizes series. An empty series yields InsufficientData with
// every other field zero.
func Estimate(series []int) Summary {
	if len(series) == 0 {
		return Summary{InsufficientData: true}
	}
	data := mstats.LoadRawData(series)

	s := Summary{Count: len(series)}
	// Errors only occur on empty input, which is handled above.
	s.Mean, _ = mstats.Mean(data)
	s.Sigma, _ = mstats.StandardDeviationPopulation(data)
	s.Min, _ = mstats.Min(data)
	s.Max, _ = mstats.Max(data)
	s.Median, _ = mstats.Median(data)
	return s
}

// HasCurve reports whether a normal density can be fitted: at least two
// observations and non-zero sigma.
func (s Summary) HasCurve() bool {
	return !s.InsufficientData && s.Count >= 2 && s.Sigma > 0
}

// Constant reports whether the series must be drawn as a single
// constant-performance marker at Mean instead of a bell curve.
func (s Summary) Constant() bool {
	return !s.InsufficientData && !s.HasCurve()
}

// Domain returns the plotting interval. With a curve it is mean ± 4 sigma;
// otherwise it falls back to [min-2, max+3] so the marker and histogram
// still have room.
func (s Summary) Domain() (lo, hi float64) {
	if s.InsufficientData {
		return 0, 0
	}
	if s.HasCurve() {
		return s.Mean - curveHalfWidth*s.Sigma, s.Mean + curveHalfWidth*s.Sigma
	}
	return s.Min - 2, s.Max + 3
}

func (s Summary) normal() distuv.Normal {
	return distuv.Normal{Mu: s.Mean, Sigma: s.Sigma}
}

// Density evaluates the fitted normal pdf at x. It is 0 when there is no curve.
func (s Summary) Density(x float64) float64 {
	if !s.HasCurve() {
		return 0
	}
	return s.normal().Prob(x)
}

// CDF evaluates the fitted normal cdf at x. It is 0 when there is no curve.
func (s Summary) CDF(x float64) float64 {
	if !s.HasCurve() {
		return 0
	}
	return s.normal().CDF(x)
}

// Curve samples the density at points evenly spaced over Domain, endpoints
// included. It returns nil when there is no curve. points below 2 uses
// DefaultCurvePoints.
func (s Summary) Curve(points int) []Point {
	if !s.HasCurve() {
		return nil
	}
	if points < 2 {
		points = DefaultCurvePoints
	}
	lo, hi := s.Domain()
	xs := floats.Span(make([]float64, points), lo, hi)
	n := s.normal()
	out := make([]Point, len(xs))
	for i, x := range xs {
		out[i] = Point{X: x, Y: n.Prob(x)}
	}
	return out
}

// SigmaBands returns the ±1 and ±2 sigma guide lines around the mean. Nil
// without a curve.
func (s Summary) SigmaBands() []Band {
	if !s.HasCurve() {
		return nil
	}
	return []Band{
		{Label: "-2σ", X: s.Mean - 2*s.Sigma},
		{Label: "-1σ", X: s.Mean - s.Sigma},
		{Label: "+1σ", X: s.Mean + s.Sigma},
		{Label: "+2σ", X: s.Mean + 2*s.Sigma},
	}
}
