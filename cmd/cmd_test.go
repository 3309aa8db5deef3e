package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/storage"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

func sampleRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "8478402", Kind: model.KindSkater, Name: "Connor McDavid", Columns: map[string][]int{
			"goals": {1, 0, 2, 1}, "assists": {2, 1, 0, 1}, "shots": {4, 3, 6, 5},
		}},
		{ID: "8478048", Kind: model.KindGoalie, Name: "Igor Shesterkin", Columns: map[string][]int{
			"shotsAgainst": {30, 25, 33}, "goalsAgainst": {2, 3, 1},
		}},
		{ID: "TOR", Kind: model.KindTeam, Name: "Toronto Maple Leafs", Columns: map[string][]int{
			"period1Goals": {1, 0, 2}, "period2Goals": {0, 2, 1}, "period3Goals": {2, 1, 0},
		}},
	}
}

func TestKindFlag(t *testing.T) {
	k, err := kindFlag("")
	require.NoError(t, err)
	assert.Equal(t, model.KindUnknown, k)

	k, err = kindFlag("goalie")
	require.NoError(t, err)
	assert.Equal(t, model.KindGoalie, k)

	_, err = kindFlag("referee")
	assert.Error(t, err)
}

func TestSkaterMetrics(t *testing.T) {
	m, err := skaterMetrics("")
	require.NoError(t, err)
	assert.Equal(t, []model.Metric{model.MetricPoints}, m)

	m, err = skaterMetrics("all")
	require.NoError(t, err)
	assert.Equal(t, viewer.SkaterMetrics, m)

	m, err = skaterMetrics("shots")
	require.NoError(t, err)
	assert.Equal(t, []model.Metric{model.MetricShots}, m)

	_, err = skaterMetrics("saves")
	assert.Error(t, err)
}

func TestDefaultMetric(t *testing.T) {
	assert.Equal(t, model.MetricPoints, defaultMetric(model.KindSkater))
	assert.Equal(t, model.MetricSaves, defaultMetric(model.KindGoalie))
	assert.Equal(t, model.MetricTotalGoals, defaultMetric(model.KindTeam))
}

func TestExportEntitiesKeepsOrder(t *testing.T) {
	recs := sampleRecords()
	ref := 1.5
	out, err := exportEntities(context.Background(), recs, viewer.Options{Reference: &ref}, 2)
	require.NoError(t, err)
	require.Len(t, out, len(recs))

	for i, r := range recs {
		assert.Equal(t, r.ID, out[i].ID)
	}
	assert.Len(t, out[0].Metrics, len(viewer.SkaterMetrics))
	assert.Len(t, out[1].Metrics, 3)
	require.NotNil(t, out[2].Team)
	assert.Nil(t, out[2].Metrics)
	assert.Equal(t, 3, out[2].Team.Games)
	require.NotNil(t, out[0].Metrics[0].Reference)
	assert.Equal(t, 4, out[0].Games)
}

func TestExportEntitiesMalformed(t *testing.T) {
	recs := []model.RawRecord{{ID: "x", Columns: map[string][]int{"goals": {1}}}}
	_, err := exportEntities(context.Background(), recs, viewer.Options{}, 1)
	assert.ErrorIs(t, err, series.ErrMalformedRecord)
}

func TestBuildEntityContext(t *testing.T) {
	b, err := series.FromRecord(sampleRecords()[1])
	require.NoError(t, err)
	ref := 27.5
	raw, err := buildEntityContext(b, &ref)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "goalie", doc["subject"])
	metrics, ok := doc["metrics"].([]any)
	require.True(t, ok)
	require.Len(t, metrics, 3)
	first := metrics[0].(map[string]any)
	assert.Equal(t, "Shots Against", first["metric"])
	assert.Contains(t, first, "reference")
}

func TestBuildEntityContextTeam(t *testing.T) {
	b, err := series.FromRecord(sampleRecords()[2])
	require.NoError(t, err)
	raw, err := buildEntityContext(b, nil)
	require.NoError(t, err)
	assert.Contains(t, raw, `"period1_to_period2"`)
	assert.Contains(t, raw, `"total_goals_over_under"`)
}

func TestPrintBundle(t *testing.T) {
	b, err := series.FromRecord(sampleRecords()[0])
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printBundle(&buf, b, "goals", "0.5"))
	out := buf.String()
	assert.Contains(t, out, "--- Goals ---")
	assert.Contains(t, out, "Goals 0.5")
	assert.False(t, strings.Contains(out, "--- Points ---"))

	team, err := series.FromRecord(sampleRecords()[2])
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, printBundle(&buf, team, "", ""))
	assert.Contains(t, buf.String(), "1st period → 2nd period goals")
}

func TestStorageGames(t *testing.T) {
	r := model.RawRecord{Columns: map[string][]int{"goals": {1, 2}, "shots": {1, 2, 3}}}
	assert.Equal(t, 3, storageGames(r))
	assert.Equal(t, 0, storageGames(model.RawRecord{}))
}

func TestCountStored(t *testing.T) {
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	recs := sampleRecords()
	n, err := countStored(db, recs)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, db.InsertRecords(recs[:2], "first.json"))
	n, err = countStored(db, recs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same id under another kind is a new entity.
	other := []model.RawRecord{{ID: "8478402", Kind: model.KindGoalie}}
	n, err = countStored(db, other)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestColumnUnion(t *testing.T) {
	recs := sampleRecords()[:2]
	recs = append(recs, model.RawRecord{ID: "x", Kind: model.KindSkater, Columns: map[string][]int{"goals": {}}})
	assert.Equal(t, []string{"assists", "goals", "goalsAgainst", "shots", "shotsAgainst"}, columnUnion(recs))
	assert.Empty(t, columnUnion(nil))
}

func TestRemoveDBFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.db")
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	removed, err := removeDBFiles(path)
	require.NoError(t, err)
	assert.True(t, removed)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be gone", p)
	}

	removed, err = removeDBFiles(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveDBFilesLeftoverSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	require.NoError(t, os.WriteFile(path+"-wal", []byte("x"), 0644))

	removed, err := removeDBFiles(path)
	require.NoError(t, err)
	assert.False(t, removed)
	_, err = os.Stat(path + "-wal")
	assert.True(t, os.IsNotExist(err))
}
