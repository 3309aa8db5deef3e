package stats

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMisalignedSeries is returned when paired series differ in length.
var ErrMisalignedSeries = errors.New("misaligned series")

// TransitionMatrix maps an observed "from" value to the percentage
// distribution of "to" values in the same games. Each row sums to 100.
type TransitionMatrix struct {
	Rows      map[int]map[int]float64 `json:"rows"`
	RowCounts map[int]int             `json:"row_counts"`
}

// BuildTransition cross-tabulates from against to game by game and
// normalizes each row to percentages. Only observed from values get rows.
func BuildTransition(from, to []int) (TransitionMatrix, error) {
	if len(from) != len(to) {
		return TransitionMatrix{}, fmt.Errorf("%w: from has %d games, to has %d", ErrMisalignedSeries, len(from), len(to))
	}

	counts := make(map[int]map[int]int)
	rowCounts := make(map[int]int)
	for i, f := range from {
		row, ok := counts[f]
		if !ok {
			row = make(map[int]int)
			counts[f] = row
		}
		row[to[i]]++
		rowCounts[f]++
	}

	m := TransitionMatrix{
		Rows:      make(map[int]map[int]float64, len(counts)),
		RowCounts: rowCounts,
	}
	for f, row := range counts {
		total := float64(rowCounts[f])
		pct := make(map[int]float64, len(row))
		for t, c := range row {
			pct[t] = 100 * float64(c) / total
		}
		m.Rows[f] = pct
	}
	return m, nil
}

// Empty reports whether the matrix has no rows.
func (m TransitionMatrix) Empty() bool { return len(m.Rows) == 0 }

// FromValues returns the row keys in ascending order.
func (m TransitionMatrix) FromValues() []int {
	out := make([]int, 0, len(m.Rows))
	for f := range m.Rows {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// ToValues returns every column key seen in any row, ascending.
func (m TransitionMatrix) ToValues() []int {
	seen := make(map[int]struct{})
	for _, row := range m.Rows {
		for t := range row {
			seen[t] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// Cell returns the percentage for (from, to); 0 when either is unobserved.
func (m TransitionMatrix) Cell(from, to int) float64 {
	return m.Rows[from][to]
}

// RowGames returns how many games had the given from value.
func (m TransitionMatrix) RowGames(from int) int {
	return m.RowCounts[from]
}
