package series

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-nhl-metrics/internal/model"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func TestExtract_DerivedPoints(t *testing.T) {
	raw := decode(t, `{"Name":"A","goals":[1,0,2],"assists":[0,1,1]}`)

	ex, err := Extract(raw, []model.Metric{model.MetricPoints})
	require.NoError(t, err)

	pts := ex.Derived[model.MetricPoints]
	assert.Equal(t, []int{1, 1, 3}, pts.Values)
	assert.Equal(t, []int{3, 3}, pts.InputLengths)
	assert.False(t, pts.Truncated())
	assert.Equal(t, "A", ex.Name)
	assert.Equal(t, model.KindSkater, ex.Kind)
}

func TestExtract_DerivedTruncatesToShortest(t *testing.T) {
	raw := decode(t, `{"Name":"G","shotsAgainst":[30,25,28],"goalsAgainst":[2,3]}`)

	ex, err := Extract(raw, []model.Metric{model.MetricSaves})
	require.NoError(t, err)

	saves := ex.Derived[model.MetricSaves]
	assert.Equal(t, []int{28, 22}, saves.Values)
	assert.Equal(t, []int{3, 2}, saves.InputLengths)
	assert.True(t, saves.Truncated())
}

func TestExtract_PrimaryCopied(t *testing.T) {
	raw := decode(t, `{"Name":"A","shots":[3,5,0]}`)

	ex, err := Extract(raw, []model.Metric{model.MetricShots})
	require.NoError(t, err)

	v, ok := ex.Series(model.MetricShots)
	require.True(t, ok)
	assert.Equal(t, []int{3, 5, 0}, v)
}

func TestExtract_MissingMetricZeroFilled(t *testing.T) {
	raw := decode(t, `{"Name":"A","goals":[1,2],"shots":[4,4,4]}`)

	ex, err := Extract(raw, []model.Metric{model.MetricAssists, model.MetricPoints})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0}, ex.Primary[model.MetricAssists])
	pts := ex.Derived[model.MetricPoints]
	assert.Equal(t, []int{1, 2}, pts.Values)
	assert.Equal(t, []int{2, 3}, pts.InputLengths)
}

func TestExtract_NullElementsBecomeZero(t *testing.T) {
	raw := decode(t, `{"Name":"A","goals":[1,null,2]}`)

	ex, err := Extract(raw, []model.Metric{model.MetricGoals})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, ex.Primary[model.MetricGoals])
}

func TestExtract_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"string", "not a record"},
		{"list", []any{1, 2, 3}},
		{"metric not a list", decode(t, `{"goals":3}`)},
		{"non-integral element", decode(t, `{"goals":[1,2.5]}`)},
		{"string element", decode(t, `{"goals":[1,"x"]}`)},
		{"team rows not a list", decode(t, `{"date-data":{}}`)},
		{"team row not a mapping", decode(t, `{"date-data":[1]}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.raw, []model.Metric{model.MetricGoals})
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestExtract_TeamRowsPivoted(t *testing.T) {
	raw := decode(t, `{
		"period1Goals": 3, "period2Goals": 1, "period3Goals": 2, "totalGoals": 0,
		"date-data": [
			{"period1Goals":1,"period2Goals":0,"period3Goals":2},
			{"period1Goals":2,"period2Goals":1}
		]
	}`)

	ex, err := Extract(raw, []model.Metric{model.MetricPeriod3Goals, model.MetricTotalGoals, model.MetricFirstTwoPeriods})
	require.NoError(t, err)

	assert.Equal(t, model.KindTeam, ex.Kind)
	assert.Equal(t, 2, ex.Games)
	assert.Equal(t, []int{2, 0}, ex.Primary[model.MetricPeriod3Goals])
	assert.Equal(t, []int{3, 3}, ex.Derived[model.MetricTotalGoals].Values)
	assert.Equal(t, []int{1, 3}, ex.Derived[model.MetricFirstTwoPeriods].Values)
}

func TestExtract_RawRecord(t *testing.T) {
	rec := model.RawRecord{
		ID:   "8478402",
		Kind: model.KindSkater,
		Name: "C. McDavid",
		Columns: map[string][]int{
			"goals":   {1, 2},
			"assists": {2, 0},
			"points":  {99, 99},
		},
	}

	ex, err := Extract(rec, []model.Metric{model.MetricPoints})
	require.NoError(t, err)
	assert.Equal(t, "8478402", ex.ID)
	assert.Equal(t, []int{3, 2}, ex.Derived[model.MetricPoints].Values)

	ex, err = Extract(&rec, []model.Metric{model.MetricGoals})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ex.Primary[model.MetricGoals])

	var nilRec *model.RawRecord
	_, err = Extract(nilRec, nil)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestExtract_DoesNotAliasInput(t *testing.T) {
	rec := model.RawRecord{Kind: model.KindSkater, Columns: map[string][]int{"goals": {1, 2}}}

	ex, err := Extract(rec, []model.Metric{model.MetricGoals})
	require.NoError(t, err)
	ex.Primary[model.MetricGoals][0] = 42
	assert.Equal(t, 1, rec.Columns["goals"][0])
}

func TestNormalizeEntry(t *testing.T) {
	rec, err := NormalizeEntry("8471679", decode(t, `{"Name":"C. Price","shotsAgainst":[30],"goalsAgainst":[2],"saves":[28]}`))
	require.NoError(t, err)

	assert.Equal(t, "8471679", rec.ID)
	assert.Equal(t, model.KindGoalie, rec.Kind)
	assert.Equal(t, []string{"goalsAgainst", "shotsAgainst"}, ColumnNames(rec))

	_, err = NormalizeEntry("x", 12)
	require.ErrorIs(t, err, ErrMalformedRecord)
}
