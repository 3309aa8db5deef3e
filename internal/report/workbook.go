package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-nhl-metrics/internal/stats"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

// Workbook sheet names.
const (
	SheetSummary     = "Summary"
	SheetOverUnder   = "Over-Under"
	SheetTransitions = "Transitions"
)

// WorkbookEntry is one entity to lay out in the workbook. Team is set for
// teams, Metrics for skaters and goalies.
type WorkbookEntry struct {
	Kind    string
	ID      string
	Name    string
	Metrics []viewer.MetricView
	Team    *viewer.TeamView
}

// WriteWorkbook writes entries as an .xlsx workbook with one sheet per table:
// summaries and reference splits, over/under lines, and team transitions.
func WriteWorkbook(w io.Writer, entries []WorkbookEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetOverUnder, SheetTransitions} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	summary := &sheetWriter{f: f, sheet: SheetSummary}
	summary.row("KIND", "ID", "NAME", "METRIC", "GAMES", "MEAN", "SD", "MIN", "MEDIAN", "MAX",
		"LINE", "BELOW %", "ABOVE %", "EQUAL %", "NORMAL BELOW %", "NORMAL ABOVE %")
	ou := &sheetWriter{f: f, sheet: SheetOverUnder}
	ou.row("KIND", "ID", "NAME", "METRIC", "LINE", "OVER %", "UNDER %", "GAMES")
	tr := &sheetWriter{f: f, sheet: SheetTransitions}
	tr.row("ID", "NAME", "MATRIX", "FROM", "TO", "PCT", "ROW GAMES")

	for _, e := range entries {
		for _, v := range e.Metrics {
			summary.row(summaryCells(e, v)...)
			for _, p := range v.OverUnder.Points {
				ou.row(e.Kind, e.ID, e.Name, v.Label, p.Threshold, round2(p.OverPct), round2(p.UnderPct()), v.OverUnder.Games)
			}
		}
		if e.Team == nil {
			continue
		}
		tv := e.Team
		transitionRows(tr, e, "P1 → P2", tv.P1ToP2)
		transitionRows(tr, e, "P1+P2 → P3", tv.FirstTwoToP3)
		for _, p := range tv.TotalLines.Points {
			ou.row(e.Kind, e.ID, e.Name, "Total Goals", p.Threshold, round2(p.OverPct), round2(p.UnderPct()), tv.TotalLines.Games)
		}
	}

	for _, s := range []*sheetWriter{summary, ou, tr} {
		if s.err != nil {
			return fmt.Errorf("sheet %s: %w", s.sheet, s.err)
		}
	}
	return f.Write(w)
}

func summaryCells(e WorkbookEntry, v viewer.MetricView) []any {
	s := v.Summary
	cells := []any{e.Kind, e.ID, e.Name, v.Label, s.Count}
	if s.InsufficientData {
		cells = append(cells, insufficientData)
		return cells
	}
	cells = append(cells, round2(s.Mean), round2(s.Sigma), s.Min, s.Median, s.Max)
	if r := v.Reference; r != nil && !r.InsufficientData {
		cells = append(cells, r.Reference, round2(r.EmpiricalBelowPct), round2(r.EmpiricalAbovePct), round2(r.EmpiricalEqualPct))
		if r.Theoretical != nil {
			cells = append(cells, round2(r.Theoretical.BelowPct), round2(r.Theoretical.AbovePct))
		}
	}
	return cells
}

// transitionRows writes the non-empty cells of m.
func transitionRows(s *sheetWriter, e WorkbookEntry, name string, m stats.TransitionMatrix) {
	for _, from := range m.FromValues() {
		for _, to := range m.ToValues() {
			if pct := m.Cell(from, to); pct > 0 {
				s.row(e.ID, e.Name, name, from, to, round2(pct), m.RowGames(from))
			}
		}
	}
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (s *sheetWriter) row(values ...any) {
	if s.err != nil {
		return
	}
	s.next++
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.sheet, cell, &values)
}
