package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/stats"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

func goalieBundle(t *testing.T) series.GoalieSeriesBundle {
	t.Helper()
	b, err := series.Goalie(map[string]any{
		"name":         "Carey Price",
		"shotsAgainst": []any{30, 25, 28, 33},
		"goalsAgainst": []any{2, 3, 1, 4},
	})
	require.NoError(t, err)
	return b
}

func TestHistogramFittedCurve(t *testing.T) {
	ref := 27.5
	views, err := viewer.Goalie(goalieBundle(t), viewer.Options{Reference: &ref})
	require.NoError(t, err)
	require.NotEmpty(t, views)

	bar := Histogram(views[0])
	assert.Contains(t, bar.Title.Subtitle, "Line 27.5")
	assert.Contains(t, bar.Title.Subtitle, "normal")
	assert.NotEmpty(t, bar.MultiSeries)
}

func TestHistogramInsufficientData(t *testing.T) {
	v := viewer.MetricView{Label: model.MetricGoals.Label(), Summary: stats.Estimate(nil)}
	bar := Histogram(v)
	assert.Equal(t, "Insufficient Data", bar.Title.Subtitle)
	assert.Empty(t, bar.MultiSeries)
}

func TestTransitionHeatMapCells(t *testing.T) {
	m, err := stats.BuildTransition([]int{0, 0, 1}, []int{1, 2, 1})
	require.NoError(t, err)

	hm := TransitionHeatMap("P1 to P2", "to", "from", m)
	require.Len(t, hm.MultiSeries, 1)
	// Two "from" values by two "to" values.
	assert.Len(t, hm.MultiSeries[0].Data, 4)
}

func TestRenderMetricsPage(t *testing.T) {
	views, err := viewer.Goalie(goalieBundle(t), viewer.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderMetrics(&buf, "Carey Price", views))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Carey Price")
}

func TestRenderTeamPage(t *testing.T) {
	b, err := series.Team(map[string]any{
		"name": "TOR",
		"date-data": []any{
			map[string]any{"period1Goals": 1, "period2Goals": 0, "period3Goals": 2},
			map[string]any{"period1Goals": 0, "period2Goals": 2, "period3Goals": 1},
			map[string]any{"period1Goals": 2, "period2Goals": 1, "period3Goals": 0},
		},
	})
	require.NoError(t, err)
	tv, err := viewer.Team(b)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderTeam(&buf, tv))
	assert.Contains(t, buf.String(), "period transitions")
}
