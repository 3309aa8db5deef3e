package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/go-nhl-metrics/internal/model"
)

// Overview is the header block of the summary command.
type Overview struct {
	Skaters    int
	Goalies    int
	Teams      int
	GameValues int
	Imports    int
	LastImport string
}

// Total is the number of stored entities of every kind.
func (o Overview) Total() int { return o.Skaters + o.Goalies + o.Teams }

// ImportRecord is one row of the imports log.
type ImportRecord struct {
	SourceFile string
	Kind       model.Kind
	Entities   int
	ImportedAt string
}

// GetDBOverview counts stored entities per kind and summarizes the import log.
func (db *DB) GetDBOverview() (Overview, error) {
	var ov Overview
	rows, err := db.conn.Query("SELECT kind, COUNT(1) FROM entities GROUP BY kind")
	if err != nil {
		return ov, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return ov, err
		}
		switch model.ParseKind(kind) {
		case model.KindSkater:
			ov.Skaters = n
		case model.KindGoalie:
			ov.Goalies = n
		case model.KindTeam:
			ov.Teams = n
		}
	}
	if err := rows.Err(); err != nil {
		return ov, err
	}

	if err := db.conn.QueryRow("SELECT COUNT(1) FROM game_values").Scan(&ov.GameValues); err != nil {
		return ov, fmt.Errorf("count game_values: %w", err)
	}
	var last sql.NullString
	if err := db.conn.QueryRow("SELECT COUNT(1), MAX(imported_at) FROM imports").Scan(&ov.Imports, &last); err != nil {
		return ov, fmt.Errorf("count imports: %w", err)
	}
	ov.LastImport = last.String
	return ov, nil
}

// ListImports returns the most recent imports, newest first.
func (db *DB) ListImports(limit int) ([]ImportRecord, error) {
	rows, err := db.conn.Query(`
		SELECT source_file, kind, entities, imported_at FROM imports
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		var kind string
		if err := rows.Scan(&r.SourceFile, &kind, &r.Entities, &r.ImportedAt); err != nil {
			return nil, err
		}
		r.Kind = model.ParseKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TopEntitiesByGames returns the entities of kind with the most stored games.
func (db *DB) TopEntitiesByGames(kind model.Kind, limit int) ([]model.Entity, error) {
	rows, err := db.conn.Query(`
		SELECT kind, id, name, games, source_file, imported_at FROM entities
		WHERE kind = ? ORDER BY games DESC, name LIMIT ?`, kind.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MetricTotals returns, per entity id, the season total of each metric listed.
// Used to rank entities before exporting views.
func (db *DB) MetricTotals(kind model.Kind, metrics []model.Metric) (map[string]map[model.Metric]int, error) {
	if len(metrics) == 0 {
		return map[string]map[model.Metric]int{}, nil
	}
	args := []any{kind.String()}
	for _, m := range metrics {
		args = append(args, string(m))
	}
	rows, err := db.conn.Query(`
		SELECT entity_id, metric, SUM(value) FROM game_values
		WHERE kind = ? AND metric IN (`+placeholders(len(metrics))+`)
		GROUP BY entity_id, metric`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[model.Metric]int)
	for rows.Next() {
		var id, metric string
		var sum int
		if err := rows.Scan(&id, &metric, &sum); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[model.Metric]int)
		}
		out[id][model.Metric(metric)] = sum
	}
	return out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
