// Package chart renders views as self-contained HTML pages of ECharts
// charts: histogram with fitted curve, transition heatmaps and over/under bars.
package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pable/go-nhl-metrics/internal/stats"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

const (
	chartWidth   = "900px"
	chartHeight  = "420px"
	heatmapColor = "#ebedf0"
)

var heatmapRange = []string{heatmapColor, "#c6dbef", "#6baed6", "#2171b5", "#08306b"}

// Histogram draws the per-value game counts of v with the fitted normal
// scaled to expected games per value. Constant series get a mark line at the
// mean instead of a curve.
func Histogram(v viewer.MetricView) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title(v), Subtitle: subtitle(v)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: v.Label, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Games"}),
	)
	if v.Summary.InsufficientData {
		return bar
	}

	lo, hi := v.Summary.Domain()
	first, last := int(math.Floor(lo)), int(math.Ceil(hi))
	if first > int(v.Summary.Min) {
		first = int(v.Summary.Min)
	}
	if last < int(v.Summary.Max) {
		last = int(v.Summary.Max)
	}

	counts := make(map[int]int, len(v.Series))
	for _, x := range v.Series {
		counts[x]++
	}

	labels := make([]string, 0, last-first+1)
	bars := make([]opts.BarData, 0, last-first+1)
	fit := make([]opts.LineData, 0, last-first+1)
	n := float64(v.Summary.Count)
	for x := first; x <= last; x++ {
		labels = append(labels, strconv.Itoa(x))
		bars = append(bars, opts.BarData{Value: counts[x]})
		expected := n * (v.Summary.CDF(float64(x)+0.5) - v.Summary.CDF(float64(x)-0.5))
		fit = append(fit, opts.LineData{Value: round2(expected)})
	}

	bar.SetXAxis(labels)
	if v.Summary.Constant() {
		bar.AddSeries("Games", bars, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
			Name:  fmt.Sprintf("Constant performance %.2f", v.Summary.Mean),
			XAxis: strconv.Itoa(int(math.Round(v.Summary.Mean))),
		}))
		return bar
	}

	bar.AddSeries("Games", bars)
	line := charts.NewLine()
	line.SetXAxis(labels)
	line.AddSeries("Normal fit", fit,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
	)
	bar.Overlap(line)
	return bar
}

// TransitionHeatMap draws m with "to" values across and "from" values down.
func TransitionHeatMap(name string, xName, yName string, m stats.TransitionMatrix) *charts.HeatMap {
	froms, tos := m.FromValues(), m.ToValues()
	xLabels := make([]string, len(tos))
	for i, t := range tos {
		xLabels[i] = strconv.Itoa(t)
	}
	yLabels := make([]string, len(froms))
	for i, f := range froms {
		yLabels[i] = strconv.Itoa(f)
	}

	data := make([]opts.HeatMapData, 0, len(froms)*len(tos))
	for i, f := range froms {
		for j, t := range tos {
			data = append(data, opts.HeatMapData{Value: []any{j, i, round2(m.Cell(f, t))}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: "row-normalized % of games"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xName, Type: "category", Data: xLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yName, Type: "category", Data: yLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true), Min: 0, Max: 100,
			InRange: &opts.VisualMapInRange{Color: heatmapRange},
			Orient:  "horizontal", Left: "center", Bottom: "2%",
		}),
	)
	hm.AddSeries(name, data, charts.WithLabelOpts(opts.Label{
		Show: opts.Bool(true), Position: "inside", Color: "black",
	}))
	return hm
}

// OverUnderBars draws the over and under share at each line as stacked bars.
func OverUnderBars(name string, c stats.OverUnderCurve) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("%d games", c.Games)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of games", Max: 100}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	labels := make([]string, len(c.Points))
	over := make([]opts.BarData, len(c.Points))
	under := make([]opts.BarData, len(c.Points))
	for i, p := range c.Points {
		labels[i] = fmt.Sprintf("%.1f", p.Threshold)
		over[i] = opts.BarData{Value: round2(p.OverPct)}
		under[i] = opts.BarData{Value: round2(p.UnderPct())}
	}
	bar.SetXAxis(labels).
		AddSeries("Over", over, charts.WithBarChartOpts(opts.BarChart{Stack: "ou"})).
		AddSeries("Under", under, charts.WithBarChartOpts(opts.BarChart{Stack: "ou"}))
	return bar
}

// RenderMetrics writes one page with a histogram and an over/under chart
// per view.
func RenderMetrics(w io.Writer, pageTitle string, views []viewer.MetricView) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	for _, v := range views {
		page.AddCharts(Histogram(v))
		if !v.OverUnder.Empty() {
			page.AddCharts(OverUnderBars(v.Label+" over/under", v.OverUnder))
		}
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderTeam writes the two transition heatmaps and the total goals lines.
func RenderTeam(w io.Writer, tv viewer.TeamView) error {
	page := components.NewPage()
	page.PageTitle = tv.EntityName + " period transitions"
	page.AddCharts(
		TransitionHeatMap(tv.EntityName+": 1st → 2nd period goals", "2nd period goals", "1st period goals", tv.P1ToP2),
		TransitionHeatMap(tv.EntityName+": 1st+2nd → 3rd period goals", "3rd period goals", "1st+2nd period goals", tv.FirstTwoToP3),
	)
	if !tv.TotalLines.Empty() {
		page.AddCharts(OverUnderBars(tv.EntityName+": total goals over/under", tv.TotalLines))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func title(v viewer.MetricView) string {
	if v.EntityName == "" {
		return v.Label
	}
	return v.EntityName + " – " + v.Label
}

// subtitle is the stats box text plus the reference split when one is set.
func subtitle(v viewer.MetricView) string {
	s := v.Summary
	if s.InsufficientData {
		return "Insufficient Data"
	}
	out := fmt.Sprintf("Mean %.2f  SD %.2f  Games %d", s.Mean, s.Sigma, s.Count)
	if r := v.Reference; r != nil && !r.InsufficientData {
		out += fmt.Sprintf("  |  Line %g: below %.1f%%, above %.1f%%", r.Reference, r.EmpiricalBelowPct, r.EmpiricalAbovePct)
		if r.Theoretical != nil {
			out += fmt.Sprintf(" (normal %.1f%% / %.1f%%)", r.Theoretical.BelowPct, r.Theoretical.AbovePct)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
