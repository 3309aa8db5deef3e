// Package dump reads the per-season JSON dump files written by the data-fetch
// scripts: { entity_id: { "Name": str, metric: [int, ...] } }.
package dump

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
)

// File is a decoded dump.
type File struct {
	Path    string
	Kind    model.Kind
	Records []model.RawRecord
}

// DetectKind guesses the entity kind from a dump file name, e.g.
// goalie_analysis_2024-11-02.json or team_analysis.json.zst.
func DetectKind(path string) model.Kind {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(base, "goalie"):
		return model.KindGoalie
	case strings.Contains(base, "team"), strings.Contains(base, "goals"):
		return model.KindTeam
	case strings.Contains(base, "player"), strings.Contains(base, "skater"):
		return model.KindSkater
	default:
		return model.KindUnknown
	}
}

// Load opens path, transparently decompressing .gz, .zst, .bz2 and .lz4, and
// decodes it. kind overrides the file-name detection when not KindUnknown.
func Load(path string, kind model.Kind) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case strings.HasSuffix(path, ".bz2"):
		src = bzip2.NewReader(f)
	case strings.HasSuffix(path, ".lz4"):
		src = lz4.NewReader(f)
	}

	if kind == model.KindUnknown {
		kind = DetectKind(path)
	}
	out, err := Decode(src, kind)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	out.Path = path
	return out, nil
}

// Decode reads one dump document from r. Entries are returned sorted by id.
// A malformed entry fails the whole document.
func Decode(r io.Reader, kind model.Kind) (*File, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", series.ErrMalformedRecord, err)
	}

	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := &File{Kind: kind, Records: make([]model.RawRecord, 0, len(ids))}
	for _, id := range ids {
		rec, err := series.NormalizeEntry(id, doc[id])
		if err != nil {
			return nil, err
		}
		if kind != model.KindUnknown {
			rec.Kind = kind
		}
		if rec.Name == "" {
			rec.Name = id
		}
		out.Records = append(out.Records, rec)
	}
	if out.Kind == model.KindUnknown {
		out.Kind = majorityKind(out.Records)
	}
	return out, nil
}

func majorityKind(recs []model.RawRecord) model.Kind {
	counts := make(map[model.Kind]int)
	for _, r := range recs {
		counts[r.Kind]++
	}
	best, n := model.KindUnknown, 0
	for _, k := range []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam} {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best
}
