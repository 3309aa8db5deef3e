package storage

import (
	"reflect"
	"testing"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "8478402", Kind: model.KindSkater, Name: "Connor McDavid", Columns: map[string][]int{
			"goals": {1, 0, 2}, "assists": {2, 1, 0}, "shots": {4, 3, 6},
		}},
		{ID: "8477934", Kind: model.KindSkater, Name: "Leon Draisaitl", Columns: map[string][]int{
			"goals": {0, 1}, "assists": {1, 1}, "shots": {2, 5},
		}},
		{ID: "8471679", Kind: model.KindGoalie, Name: "Carey Price", Columns: map[string][]int{
			"shotsAgainst": {30, 25}, "goalsAgainst": {2, 3},
		}},
	}
}

func TestInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	if err := db.InsertRecords(sampleRecords(), "player_analysis.json"); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}

	exists, err := db.EntityExists(model.KindSkater, "8478402")
	if err != nil {
		t.Fatalf("EntityExists: %v", err)
	}
	if !exists {
		t.Error("expected skater to exist after insert")
	}

	exists2, _ := db.EntityExists(model.KindGoalie, "8478402")
	if exists2 {
		t.Error("skater id must not exist as a goalie")
	}
}

func TestInsertRejectsUnknownKind(t *testing.T) {
	db := openMemDB(t)
	err := db.InsertRecords([]model.RawRecord{{ID: "x", Columns: map[string][]int{"goals": {1}}}}, "f.json")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestListEntities(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertRecords(sampleRecords(), "f.json"); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}

	skaters, err := db.ListEntities(model.KindSkater)
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(skaters) != 2 {
		t.Fatalf("expected 2 skaters, got %d", len(skaters))
	}
	// Ordered by name: Connor before Leon.
	if skaters[0].Name != "Connor McDavid" {
		t.Errorf("expected Connor McDavid first, got %s", skaters[0].Name)
	}
	if skaters[0].Games != 3 {
		t.Errorf("expected 3 games, got %d", skaters[0].Games)
	}

	all, _ := db.ListEntities(model.KindUnknown)
	if len(all) != 3 {
		t.Errorf("expected 3 entities overall, got %d", len(all))
	}
}

func TestFindEntity(t *testing.T) {
	db := openMemDB(t)
	db.InsertRecords(sampleRecords(), "f.json")

	e, err := db.FindEntity(model.KindSkater, "8477934")
	if err != nil {
		t.Fatalf("FindEntity by id: %v", err)
	}
	if e == nil || e.Name != "Leon Draisaitl" {
		t.Fatalf("unexpected match by id: %+v", e)
	}

	e, err = db.FindEntity(model.KindUnknown, "carey")
	if err != nil {
		t.Fatalf("FindEntity by prefix: %v", err)
	}
	if e == nil || e.ID != "8471679" || e.Kind != model.KindGoalie {
		t.Fatalf("unexpected match by prefix: %+v", e)
	}

	e, err = db.FindEntity(model.KindSkater, "carey")
	if err != nil {
		t.Fatalf("FindEntity no-match: %v", err)
	}
	if e != nil {
		t.Error("expected nil when kind filter excludes the match")
	}

	e, _ = db.FindEntity(model.KindUnknown, "%")
	if e != nil {
		t.Error("LIKE wildcards in the query must be matched literally")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	db := openMemDB(t)
	recs := sampleRecords()
	db.InsertRecords(recs, "f.json")

	got, err := db.GetRecord(model.KindSkater, "8478402")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if !reflect.DeepEqual(got.Columns, recs[0].Columns) {
		t.Errorf("columns mismatch:\n got  %v\n want %v", got.Columns, recs[0].Columns)
	}

	missing, err := db.GetRecord(model.KindTeam, "TOR")
	if err != nil {
		t.Fatalf("GetRecord missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown entity")
	}
}

func TestEmptyColumnSurvivesReload(t *testing.T) {
	db := openMemDB(t)
	rec := model.RawRecord{ID: "8479318", Kind: model.KindSkater, Name: "Auston Matthews", Columns: map[string][]int{
		"goals": {1, 2, 3}, "assists": {}, "shots": {1, 1, 1},
	}}
	if err := db.InsertRecords([]model.RawRecord{rec}, "f.json"); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}

	got, err := db.GetRecord(model.KindSkater, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	assists, ok := got.Columns["assists"]
	if !ok {
		t.Fatal("empty assists column was dropped on reload")
	}
	if len(assists) != 0 {
		t.Errorf("expected empty assists, got %v", assists)
	}

	b, err := series.Skater(*got)
	if err != nil {
		t.Fatalf("Skater: %v", err)
	}
	if !b.Points.Truncated() {
		t.Error("points must stay truncated after a reload")
	}
	if len(b.Points.Values) != 0 {
		t.Errorf("expected no points, got %v", b.Points.Values)
	}

	deleted, err := db.DeleteEntity(model.KindSkater, rec.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteEntity: deleted=%v err=%v", deleted, err)
	}
	_, rows, err := db.QueryRaw("SELECT metric FROM metric_lengths")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected metric_lengths cleared on delete, got %d rows", len(rows))
	}
}

func TestReimportReplacesSeries(t *testing.T) {
	db := openMemDB(t)
	db.InsertRecords(sampleRecords(), "old.json")

	updated := []model.RawRecord{{ID: "8478402", Kind: model.KindSkater, Name: "Connor McDavid", Columns: map[string][]int{
		"goals": {3}, "assists": {0}, "shots": {7},
	}}}
	if err := db.InsertRecords(updated, "new.json"); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}

	got, _ := db.GetRecord(model.KindSkater, "8478402")
	if want := []int{3}; !reflect.DeepEqual(got.Columns["goals"], want) {
		t.Errorf("goals = %v, want %v", got.Columns["goals"], want)
	}

	ov, err := db.GetDBOverview()
	if err != nil {
		t.Fatalf("GetDBOverview: %v", err)
	}
	if ov.Skaters != 2 || ov.Goalies != 1 || ov.Teams != 0 {
		t.Errorf("unexpected counts: %+v", ov)
	}
	// 3+3+3 + 2+2+2 + 2+2 after the first import; McDavid shrinks to 1+1+1.
	if ov.GameValues != 13 {
		t.Errorf("expected 13 game values, got %d", ov.GameValues)
	}
	if ov.Imports != 3 {
		t.Errorf("expected 3 import log rows, got %d", ov.Imports)
	}
}

func TestDeleteEntity(t *testing.T) {
	db := openMemDB(t)
	db.InsertRecords(sampleRecords(), "f.json")

	ok, err := db.DeleteEntity(model.KindGoalie, "8471679")
	if err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if !ok {
		t.Error("expected a deleted row")
	}
	ok, _ = db.DeleteEntity(model.KindGoalie, "8471679")
	if ok {
		t.Error("second delete must report nothing deleted")
	}
	cols, rows, err := db.QueryRaw("SELECT COUNT(1) AS n FROM game_values WHERE kind = 'goalie'")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 1 || cols[0] != "n" || rows[0][0] != "0" {
		t.Errorf("expected goalie values removed, got %v %v", cols, rows)
	}
}

func TestMetricTotalsAndTop(t *testing.T) {
	db := openMemDB(t)
	db.InsertRecords(sampleRecords(), "f.json")

	totals, err := db.MetricTotals(model.KindSkater, []model.Metric{model.MetricGoals, model.MetricShots})
	if err != nil {
		t.Fatalf("MetricTotals: %v", err)
	}
	if totals["8478402"][model.MetricGoals] != 3 || totals["8478402"][model.MetricShots] != 13 {
		t.Errorf("unexpected totals: %v", totals["8478402"])
	}

	top, err := db.TopEntitiesByGames(model.KindSkater, 1)
	if err != nil {
		t.Fatalf("TopEntitiesByGames: %v", err)
	}
	if len(top) != 1 || top[0].ID != "8478402" {
		t.Errorf("unexpected top entity: %+v", top)
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?,?,?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
