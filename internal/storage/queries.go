package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-nhl-metrics/internal/model"
)

// EntityExists returns true if an entity of the given kind and id is stored.
func (db *DB) EntityExists(kind model.Kind, id string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM entities WHERE kind = ? AND id = ?", kind.String(), id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertRecords stores records in one transaction, replacing any previous
// series of the same entities. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertRecords(recs []model.RawRecord, sourceFile string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	entStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entities(kind, id, name, games, source_file, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer entStmt.Close()

	delStmt, err := tx.Prepare("DELETE FROM game_values WHERE kind = ? AND entity_id = ?")
	if err != nil {
		return err
	}
	defer delStmt.Close()

	valStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO game_values(kind, entity_id, metric, game_index, value)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer valStmt.Close()

	delLenStmt, err := tx.Prepare("DELETE FROM metric_lengths WHERE kind = ? AND entity_id = ?")
	if err != nil {
		return err
	}
	defer delLenStmt.Close()

	lenStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO metric_lengths(kind, entity_id, metric, games)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer lenStmt.Close()

	kinds := make(map[model.Kind]int)
	for _, r := range recs {
		if r.Kind == model.KindUnknown {
			return fmt.Errorf("insert entity %q: unknown kind", r.ID)
		}
		kind := r.Kind.String()
		if _, err := delStmt.Exec(kind, r.ID); err != nil {
			return fmt.Errorf("clear game_values for %s: %w", r.ID, err)
		}
		if _, err := delLenStmt.Exec(kind, r.ID); err != nil {
			return fmt.Errorf("clear metric_lengths for %s: %w", r.ID, err)
		}
		if _, err := entStmt.Exec(kind, r.ID, r.Name, recordGames(r), sourceFile, now); err != nil {
			return fmt.Errorf("insert entity %s: %w", r.ID, err)
		}
		for metric, col := range r.Columns {
			if _, err := lenStmt.Exec(kind, r.ID, metric, len(col)); err != nil {
				return fmt.Errorf("insert metric_lengths for %s/%s: %w", r.ID, metric, err)
			}
			for i, v := range col {
				if _, err := valStmt.Exec(kind, r.ID, metric, i, v); err != nil {
					return fmt.Errorf("insert game_values for %s/%s: %w", r.ID, metric, err)
				}
			}
		}
		kinds[r.Kind]++
	}

	for k, n := range kinds {
		if _, err := tx.Exec(`INSERT INTO imports(source_file, kind, entities, imported_at) VALUES (?, ?, ?, ?)`,
			sourceFile, k.String(), n, now); err != nil {
			return fmt.Errorf("record import: %w", err)
		}
	}
	return tx.Commit()
}

// ListEntities returns stored entities ordered by name. KindUnknown lists all kinds.
func (db *DB) ListEntities(kind model.Kind) ([]model.Entity, error) {
	query := `SELECT kind, id, name, games, source_file, imported_at FROM entities`
	var args []any
	if kind != model.KindUnknown {
		query += " WHERE kind = ?"
		args = append(args, kind.String())
	}
	query += " ORDER BY kind, name COLLATE NOCASE"

	rows, err := db.conn.Query(query, args...)
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

// FindEntity resolves query to one entity: an exact id first, then the first
// case-insensitive name prefix match. Returns nil when nothing matches.
func (db *DB) FindEntity(kind model.Kind, query string) (*model.Entity, error) {
	where, args := "", []any{}
	if kind != model.KindUnknown {
		where = "kind = ? AND "
		args = append(args, kind.String())
	}

	row := db.conn.QueryRow(`
		SELECT kind, id, name, games, source_file, imported_at FROM entities
		WHERE `+where+`id = ? LIMIT 1`, append(args, query)...)
	e, err := scanEntity(row)
	if err == nil {
		return &e, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	row = db.conn.QueryRow(`
		SELECT kind, id, name, games, source_file, imported_at FROM entities
		WHERE `+where+`name LIKE ? ESCAPE '\'
		ORDER BY name COLLATE NOCASE LIMIT 1`, append(args, escapeLike(query)+"%")...)
	e, err = scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetRecord loads the stored columns of one entity. Returns nil when absent.
func (db *DB) GetRecord(kind model.Kind, id string) (*model.RawRecord, error) {
	var name string
	err := db.conn.QueryRow("SELECT name FROM entities WHERE kind = ? AND id = ?", kind.String(), id).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec := &model.RawRecord{ID: id, Kind: kind, Name: name, Columns: make(map[string][]int)}
	if err := db.loadColumnLengths(rec); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`
		SELECT metric, value FROM game_values
		WHERE kind = ? AND entity_id = ?
		ORDER BY metric, game_index`, kind.String(), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var metric string
		var v int
		if err := rows.Scan(&metric, &v); err != nil {
			return nil, err
		}
		rec.Columns[metric] = append(rec.Columns[metric], v)
	}
	return rec, rows.Err()
}

// loadColumnLengths creates every stored column of rec, empty ones included.
func (db *DB) loadColumnLengths(rec *model.RawRecord) error {
	rows, err := db.conn.Query(`
		SELECT metric, games FROM metric_lengths
		WHERE kind = ? AND entity_id = ?`, rec.Kind.String(), rec.ID)
	if err != nil {
		return fmt.Errorf("load metric_lengths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var metric string
		var games int
		if err := rows.Scan(&metric, &games); err != nil {
			return err
		}
		rec.Columns[metric] = make([]int, 0, games)
	}
	return rows.Err()
}

// GetRecords loads every stored entity of kind.
func (db *DB) GetRecords(kind model.Kind) ([]model.RawRecord, error) {
	ents, err := db.ListEntities(kind)
	if err != nil {
		return nil, err
	}
	out := make([]model.RawRecord, 0, len(ents))
	for _, e := range ents {
		rec, err := db.GetRecord(e.Kind, e.ID)
		if err != nil {
			return nil, fmt.Errorf("load %s %s: %w", e.Kind, e.ID, err)
		}
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// DeleteEntity removes one entity and its series. Returns false if it was not stored.
func (db *DB) DeleteEntity(kind model.Kind, id string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM game_values WHERE kind = ? AND entity_id = ?", kind.String(), id); err != nil {
		return false, err
	}
	if _, err := tx.Exec("DELETE FROM metric_lengths WHERE kind = ? AND entity_id = ?", kind.String(), id); err != nil {
		return false, err
	}
	res, err := tx.Exec("DELETE FROM entities WHERE kind = ? AND id = ?", kind.String(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// QueryRaw runs an arbitrary query and returns its column names and rows as strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (model.Entity, error) {
	var e model.Entity
	var kind string
	if err := s.Scan(&kind, &e.ID, &e.Name, &e.Games, &e.SourceFile, &e.ImportedAt); err != nil {
		return model.Entity{}, err
	}
	e.Kind = model.ParseKind(kind)
	return e, nil
}

func recordGames(r model.RawRecord) int {
	n := 0
	for _, col := range r.Columns {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
