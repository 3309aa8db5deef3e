// Package series turns raw per-entity records into aligned per-game integer
// series, including the derived metrics (points, saves, period sums).
package series

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-nhl-metrics/internal/model"
)

// ErrMalformedRecord is returned when a record is not a mapping, or a metric
// value is not a list of integral numbers.
var ErrMalformedRecord = errors.New("malformed record")

// gameRowsKey is the row-oriented per-game block used by team dumps.
const gameRowsKey = "date-data"

// Derived is a computed series plus the lengths of the inputs it was built
// from. Values has the length of the shortest input.
type Derived struct {
	Values       []int
	InputLengths []int
}

// Truncated reports whether the inputs differed in length, i.e. trailing
// games of the longer inputs were dropped.
func (d Derived) Truncated() bool {
	for _, n := range d.InputLengths {
		if n != len(d.Values) {
			return true
		}
	}
	return false
}

// Extraction is the result of Extract: the requested primitive series and
// derived series for one entity.
type Extraction struct {
	ID      string
	Kind    model.Kind
	Name    string
	Games   int
	Primary map[model.Metric][]int
	Derived map[model.Metric]Derived
}

// Series returns the values for m, primitive or derived.
func (e Extraction) Series(m model.Metric) ([]int, bool) {
	if d, ok := e.Derived[m]; ok {
		return d.Values, true
	}
	v, ok := e.Primary[m]
	return v, ok
}

// Extract pulls the named metrics out of raw. raw may be a decoded JSON
// object (map[string]any) or a model.RawRecord. Derived metrics are computed
// element-wise over the shortest operand; primitive metrics missing from the
// record are zero-filled to the record's game count.
func Extract(raw any, metrics []model.Metric) (Extraction, error) {
	rec, err := Normalize(raw)
	if err != nil {
		return Extraction{}, err
	}

	ex := Extraction{
		ID:      rec.ID,
		Kind:    rec.Kind,
		Name:    rec.Name,
		Games:   gameCount(rec),
		Primary: make(map[model.Metric][]int),
		Derived: make(map[model.Metric]Derived),
	}
	for _, m := range metrics {
		if inputs, ok := model.DerivedInputs[m]; ok {
			ex.Derived[m] = derive(m, rec, ex.Games, inputs)
			continue
		}
		ex.Primary[m] = column(rec, ex.Games, m)
	}
	return ex, nil
}

// Normalize validates raw and converts it to a column-oriented RawRecord.
// Null list elements become 0. Row-oriented team records ("date-data") are
// pivoted into columns; a key missing from a game row counts as 0 for that
// game. Keys that are not primitive metrics are ignored.
func Normalize(raw any) (model.RawRecord, error) {
	switch v := raw.(type) {
	case model.RawRecord:
		return normalizeRecord(v)
	case *model.RawRecord:
		if v == nil {
			return model.RawRecord{}, fmt.Errorf("%w: nil record", ErrMalformedRecord)
		}
		return normalizeRecord(*v)
	case map[string]any:
		return normalizeObject("", v)
	case nil:
		return model.RawRecord{}, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	default:
		return model.RawRecord{}, fmt.Errorf("%w: expected mapping, got %T", ErrMalformedRecord, raw)
	}
}

// NormalizeEntry is Normalize for one entry of a dump file, where the entity
// id is the enclosing object key.
func NormalizeEntry(id string, raw any) (model.RawRecord, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.RawRecord{}, fmt.Errorf("%w: entry %q: expected mapping, got %T", ErrMalformedRecord, id, raw)
	}
	return normalizeObject(id, obj)
}

func normalizeRecord(r model.RawRecord) (model.RawRecord, error) {
	out := model.RawRecord{ID: r.ID, Kind: r.Kind, Name: r.Name, Columns: make(map[string][]int, len(r.Columns))}
	for k, col := range r.Columns {
		if model.Metric(k).IsDerived() {
			continue
		}
		out.Columns[k] = append([]int(nil), col...)
	}
	if out.Kind == model.KindUnknown {
		out.Kind = inferKind(out.Columns)
	}
	return out, nil
}

func normalizeObject(id string, obj map[string]any) (model.RawRecord, error) {
	rec := model.RawRecord{ID: id, Columns: make(map[string][]int)}
	if s, ok := obj["Name"].(string); ok {
		rec.Name = s
	} else if s, ok := obj["name"].(string); ok {
		rec.Name = s
	}
	if rec.ID == "" {
		if s, ok := obj["id"].(string); ok {
			rec.ID = s
		}
	}

	if rows, ok := obj[gameRowsKey]; ok {
		cols, err := pivotRows(rows)
		if err != nil {
			return model.RawRecord{}, err
		}
		rec.Columns = cols
		rec.Kind = model.KindTeam
		return rec, nil
	}

	for key, val := range obj {
		if !isPrimitive(key) {
			continue
		}
		col, err := intList(key, val)
		if err != nil {
			return model.RawRecord{}, err
		}
		rec.Columns[key] = col
	}
	rec.Kind = inferKind(rec.Columns)
	return rec, nil
}

func pivotRows(raw any) (map[string][]int, error) {
	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected list, got %T", ErrMalformedRecord, gameRowsKey, raw)
	}
	keys := model.PrimaryMetrics(model.KindTeam)
	cols := make(map[string][]int, len(keys))
	for _, k := range keys {
		cols[string(k)] = make([]int, len(rows))
	}
	for i, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]: expected mapping, got %T", ErrMalformedRecord, gameRowsKey, i, r)
		}
		for _, k := range keys {
			v, present := row[string(k)]
			if !present {
				continue
			}
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d].%s: %v", ErrMalformedRecord, gameRowsKey, i, k, err)
			}
			cols[string(k)][i] = n
		}
	}
	return cols, nil
}

func intList(key string, val any) ([]int, error) {
	switch v := val.(type) {
	case []int:
		return append([]int(nil), v...), nil
	case []any:
		out := make([]int, len(v))
		for i, e := range v {
			n, err := toInt(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRecord, key, i, err)
			}
			out[i] = n
		}
		return out, nil
	case []float64:
		out := make([]int, len(v))
		for i, f := range v {
			n, err := toInt(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRecord, key, i, err)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected list, got %T", ErrMalformedRecord, key, val)
	}
}

// toInt accepts JSON numbers that are integral. nil counts as 0.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fmt.Errorf("non-integral value %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("non-integral value %s", n)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}

func isPrimitive(key string) bool {
	for _, k := range []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam} {
		for _, m := range model.PrimaryMetrics(k) {
			if string(m) == key {
				return true
			}
		}
	}
	return false
}

// inferKind picks the kind whose primitive metrics best cover cols.
func inferKind(cols map[string][]int) model.Kind {
	best, bestHits := model.KindUnknown, 0
	for _, k := range []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam} {
		hits := 0
		for _, m := range model.PrimaryMetrics(k) {
			if _, ok := cols[string(m)]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = k, hits
		}
	}
	return best
}

// gameCount is the length of the longest column.
func gameCount(r model.RawRecord) int {
	n := 0
	for _, col := range r.Columns {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// column returns a copy of the metric's values, or games zeros if absent.
func column(r model.RawRecord, games int, m model.Metric) []int {
	if col, ok := r.Columns[string(m)]; ok {
		return append([]int(nil), col...)
	}
	return make([]int, games)
}

func derive(m model.Metric, r model.RawRecord, games int, inputs []model.Metric) Derived {
	cols := make([][]int, len(inputs))
	lengths := make([]int, len(inputs))
	n := -1
	for i, in := range inputs {
		cols[i] = column(r, games, in)
		lengths[i] = len(cols[i])
		if n < 0 || lengths[i] < n {
			n = lengths[i]
		}
	}
	if n < 0 {
		n = 0
	}

	values := make([]int, n)
	for g := 0; g < n; g++ {
		if m == model.MetricSaves {
			values[g] = cols[0][g] - cols[1][g]
			continue
		}
		sum := 0
		for _, c := range cols {
			sum += c[g]
		}
		values[g] = sum
	}
	return Derived{Values: values, InputLengths: lengths}
}

// ColumnNames returns the record's column keys in sorted order.
func ColumnNames(r model.RawRecord) []string {
	names := make([]string, 0, len(r.Columns))
	for k := range r.Columns {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
