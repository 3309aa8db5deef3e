package viewer

import (
	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
)

// TrendTable is the game-by-game listing of every metric of an entity.
// Rows[g][i] is Metrics[i] in game g+1; games a shorter series lacks are -1.
type TrendTable struct {
	EntityName string         `json:"entity_name"`
	Metrics    []model.Metric `json:"metrics"`
	Rows       [][]int        `json:"rows"`
}

// Missing marks a game a series does not cover.
const Missing = -1

// Trend lays out all of b's series side by side.
func Trend(b series.Bundle) TrendTable {
	metrics := b.Metrics()
	cols := make([][]int, len(metrics))
	games := 0
	for i, m := range metrics {
		cols[i], _ = b.Series(m)
		if len(cols[i]) > games {
			games = len(cols[i])
		}
	}

	rows := make([][]int, games)
	for g := range rows {
		row := make([]int, len(metrics))
		for i, col := range cols {
			if g < len(col) {
				row[i] = col[g]
			} else {
				row[i] = Missing
			}
		}
		rows[g] = row
	}
	return TrendTable{EntityName: b.EntityName(), Metrics: metrics, Rows: rows}
}
