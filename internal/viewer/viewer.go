// Package viewer assembles the per-entity views the goalie, skater and team
// screens render. Views are rebuilt from the bundle on every call.
package viewer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/stats"
)

// Options controls how a MetricView is built.
type Options struct {
	// CurvePoints is the density sampling resolution; <2 uses the default.
	CurvePoints int
	// Reference, when set, adds a below/above split to every view.
	Reference *float64
}

// MetricView is everything needed to draw one metric of one entity:
// histogram input, fitted curve, reference split and over/under lines.
type MetricView struct {
	EntityID   string                 `json:"entity_id"`
	EntityName string                 `json:"entity_name"`
	Metric     model.Metric           `json:"metric"`
	Label      string                 `json:"label"`
	Series     []int                  `json:"series"`
	Summary    stats.Summary          `json:"summary"`
	Curve      []stats.Point          `json:"curve,omitempty"`
	Bands      []stats.Band           `json:"bands,omitempty"`
	Reference  *stats.ReferenceResult `json:"reference,omitempty"`
	OverUnder  stats.OverUnderCurve   `json:"over_under"`
	// Truncated is set for derived metrics whose inputs had different lengths.
	Truncated    bool  `json:"truncated,omitempty"`
	InputLengths []int `json:"input_lengths,omitempty"`
}

// SkaterMetrics are the metrics selectable in the skater view, in menu order.
var SkaterMetrics = []model.Metric{model.MetricPoints, model.MetricGoals, model.MetricAssists, model.MetricShots}

// BuildMetric builds the view of metric m for bundle b.
func BuildMetric(b series.Bundle, m model.Metric, opts Options) (MetricView, error) {
	values, ok := b.Series(m)
	if !ok {
		return MetricView{}, fmt.Errorf("metric %q is not available for a %s", m, b.EntityKind())
	}

	sum := stats.Estimate(values)
	v := MetricView{
		EntityID:   b.EntityID(),
		EntityName: b.EntityName(),
		Metric:     m,
		Label:      m.Label(),
		Series:     values,
		Summary:    sum,
		Curve:      sum.Curve(opts.CurvePoints),
		Bands:      sum.SigmaBands(),
		OverUnder:  stats.BuildOverUnder(values),
	}
	if d, ok := b.Derived(m); ok {
		v.Truncated = d.Truncated()
		v.InputLengths = d.InputLengths
	}
	if opts.Reference != nil {
		ref := stats.EvaluateReference(values, *opts.Reference)
		v.Reference = &ref
	}
	return v, nil
}

// Goalie builds the three goalie panels: shots against, saves, goals against.
func Goalie(b series.GoalieSeriesBundle, opts Options) ([]MetricView, error) {
	return buildAll(b, b.Metrics(), opts)
}

// Skater builds the view for one skater metric. An empty metric means points.
func Skater(b series.SkaterSeriesBundle, m model.Metric, opts Options) (MetricView, error) {
	if m == "" {
		m = model.MetricPoints
	}
	return BuildMetric(b, m, opts)
}

func buildAll(b series.Bundle, metrics []model.Metric, opts Options) ([]MetricView, error) {
	out := make([]MetricView, 0, len(metrics))
	for _, m := range metrics {
		v, err := BuildMetric(b, m, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseReference validates user input for a reference line. Blank,
// non-numeric and non-finite input all mean "no reference".
func ParseReference(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ReferenceOption wraps ParseReference for Options.Reference.
func ReferenceOption(s string) *float64 {
	v, ok := ParseReference(s)
	if !ok {
		return nil
	}
	return &v
}
