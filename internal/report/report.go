package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/stats"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

const (
	insufficientData = "Insufficient Data"
	noData           = "No data available."
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintEntityHeader prints a one-line header naming the entity.
func PrintEntityHeader(w io.Writer, kind, name, id string, games int) {
	fmt.Fprintf(w, "\n%s: %s  |  ID: %s  |  Games: %d\n\n", strings.ToUpper(kind[:1])+kind[1:], name, id, games)
}

// PrintEntityTable lists stored entities of one kind with their season total
// of each metric. totals is keyed by entity id.
func PrintEntityTable(w io.Writer, kind model.Kind, ents []model.Entity, metrics []model.Metric, totals map[string]map[model.Metric]int) {
	fmt.Fprintf(w, "\n--- %ss (%d) ---\n\n", strings.ToUpper(kind.String()[:1])+kind.String()[1:], len(ents))
	header := []any{"ID", "NAME", "GAMES"}
	for _, m := range metrics {
		header = append(header, strings.ToUpper(m.Label()))
	}
	header = append(header, "SOURCE")

	table := newTable(w)
	table.Header(header...)
	for _, e := range ents {
		row := []any{e.ID, e.Name, strconv.Itoa(e.Games)}
		for _, m := range metrics {
			row = append(row, strconv.Itoa(totals[e.ID][m]))
		}
		row = append(row, e.SourceFile)
		table.Append(row...)
	}
	table.Render()
}

// PrintSummaryTable prints the stats box of each view: games, mean, sigma,
// min/median/max and the curve status.
func PrintSummaryTable(w io.Writer, views []viewer.MetricView) {
	table := newTable(w)
	table.Header("METRIC", "GAMES", "MEAN", "SD", "MIN", "MEDIAN", "MAX", "CURVE", "SAMPLE")

	for _, v := range views {
		s := v.Summary
		if s.InsufficientData {
			table.Append(v.Label, "0", "—", "—", "—", "—", "—", insufficientData, sampleFlag(0))
			continue
		}
		table.Append(
			v.Label+truncMark(v),
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.Sigma),
			fmt.Sprintf("%.0f", s.Min),
			fmt.Sprintf("%.1f", s.Median),
			fmt.Sprintf("%.0f", s.Max),
			curveStatus(s),
			sampleFlag(s.Count),
		)
	}
	table.Render()
	for _, v := range views {
		if v.Truncated {
			fmt.Fprintf(w, "* %s truncated to %d games (inputs: %v)\n", v.Label, len(v.Series), v.InputLengths)
		}
	}
}

// PrintReferenceTable prints the below/above split of each view that carries
// a reference result. Games equal to the line are shown separately.
func PrintReferenceTable(w io.Writer, views []viewer.MetricView) {
	var rows []viewer.MetricView
	for _, v := range views {
		if v.Reference != nil {
			rows = append(rows, v)
		}
	}
	if len(rows) == 0 {
		return
	}

	table := newTable(w)
	table.Header("METRIC", "LINE", "BELOW", "ABOVE", "EQUAL", "NORMAL BELOW", "NORMAL ABOVE")
	for _, v := range rows {
		r := v.Reference
		if r.InsufficientData {
			table.Append(v.Label, fmt.Sprintf("%g", r.Reference), insufficientData, "—", "—", "—", "—")
			continue
		}
		theoBelow, theoAbove := "—", "—"
		if r.Theoretical != nil {
			theoBelow = fmt.Sprintf("%.1f%%", r.Theoretical.BelowPct)
			theoAbove = fmt.Sprintf("%.1f%%", r.Theoretical.AbovePct)
		}
		table.Append(
			v.Label,
			fmt.Sprintf("%g", r.Reference),
			fmt.Sprintf("%.1f%%", r.EmpiricalBelowPct),
			fmt.Sprintf("%.1f%%", r.EmpiricalAbovePct),
			fmt.Sprintf("%.1f%%", r.EmpiricalEqualPct),
			theoBelow,
			theoAbove,
		)
	}
	table.Render()
}

// PrintHistogram prints the per-value frequency of a series with a bar.
func PrintHistogram(w io.Writer, v viewer.MetricView) {
	if len(v.Series) == 0 {
		fmt.Fprintln(w, noData)
		return
	}
	counts := make(map[int]int)
	lo, hi := v.Series[0], v.Series[0]
	for _, x := range v.Series {
		counts[x]++
		lo = min(lo, x)
		hi = max(hi, x)
	}
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}

	table := newTable(w)
	table.Header(strings.ToUpper(v.Label), "GAMES", "PCT", "NORMAL", "")
	n := float64(len(v.Series))
	for x := lo; x <= hi; x++ {
		c := counts[x]
		normal := "—"
		if v.Summary.HasCurve() {
			// Probability mass of the fitted normal over [x-0.5, x+0.5).
			normal = fmt.Sprintf("%.1f%%", 100*binMass(v.Summary, float64(x)))
		}
		table.Append(
			strconv.Itoa(x),
			strconv.Itoa(c),
			fmt.Sprintf("%.1f%%", 100*float64(c)/n),
			normal,
			strings.Repeat("█", int(math.Round(20*float64(c)/float64(peak)))),
		)
	}
	table.Render()
	if v.Summary.Constant() {
		fmt.Fprintf(w, "Constant performance at %.2f\n", v.Summary.Mean)
	}
}

// PrintTransitionTable prints a transition matrix as a heatmap-style grid:
// one row per observed "from" value, one column per observed "to" value.
func PrintTransitionTable(w io.Writer, title string, m stats.TransitionMatrix) {
	fmt.Fprintf(w, "\n--- %s ---\n\n", title)
	if m.Empty() {
		fmt.Fprintln(w, noData)
		return
	}
	tos := m.ToValues()
	header := []any{"FROM \\ TO"}
	for _, t := range tos {
		header = append(header, strconv.Itoa(t))
	}
	header = append(header, "GAMES")

	table := newTable(w)
	table.Header(header...)
	for _, f := range m.FromValues() {
		row := []any{strconv.Itoa(f)}
		for _, t := range tos {
			pct := m.Cell(f, t)
			if pct == 0 {
				row = append(row, "·")
				continue
			}
			row = append(row, fmt.Sprintf("%.1f%%", pct))
		}
		row = append(row, strconv.Itoa(m.RowGames(f)))
		table.Append(row...)
	}
	table.Render()
}

// PrintOverUnderTable prints the over/under lines of a series with a 95%
// Wilson interval on the over share.
func PrintOverUnderTable(w io.Writer, label string, c stats.OverUnderCurve) {
	if c.Empty() {
		fmt.Fprintln(w, noData)
		return
	}
	table := newTable(w)
	table.Header("LINE", "OVER", "UNDER", "OVER 95% CI", "GAMES")
	for _, p := range c.Points {
		hits := int(math.Round(p.OverPct * float64(c.Games) / 100))
		lo, hi := wilsonCI(hits, c.Games)
		table.Append(
			fmt.Sprintf("%s %.1f", label, p.Threshold),
			fmt.Sprintf("%.1f%%", p.OverPct),
			fmt.Sprintf("%.1f%%", p.UnderPct()),
			fmt.Sprintf("%.0f–%.0f%%", lo*100, hi*100),
			strconv.Itoa(c.Games),
		)
	}
	table.Render()
}

// PrintTrendTable prints every metric of an entity game by game.
func PrintTrendTable(w io.Writer, t viewer.TrendTable) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, noData)
		return
	}
	header := []any{"GAME"}
	for _, m := range t.Metrics {
		header = append(header, strings.ToUpper(m.Label()))
	}

	table := newTable(w)
	table.Header(header...)
	for g, vals := range t.Rows {
		row := []any{strconv.Itoa(g + 1)}
		for _, v := range vals {
			if v == viewer.Missing {
				row = append(row, "—")
				continue
			}
			row = append(row, strconv.Itoa(v))
		}
		table.Append(row...)
	}
	table.Render()
}

func curveStatus(s stats.Summary) string {
	if s.HasCurve() {
		lo, hi := s.Domain()
		return fmt.Sprintf("normal [%.1f, %.1f]", lo, hi)
	}
	return fmt.Sprintf("constant @ %.2f", s.Mean)
}

func truncMark(v viewer.MetricView) string {
	if v.Truncated {
		return "*"
	}
	return ""
}

// binMass is the fitted probability of the unit bin centred on x.
func binMass(s stats.Summary, x float64) float64 {
	return s.CDF(x+0.5) - s.CDF(x-0.5)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sampleFlag(n int) string {
	switch {
	case n >= 40:
		return "OK"
	case n >= 15:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}

// wilsonCI computes the 95% Wilson score confidence interval for a proportion.
// Returns (lo, hi) as fractions in [0, 1].
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
