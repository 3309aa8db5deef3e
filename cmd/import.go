package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/dump"
	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/storage"
)

var (
	importKind   string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import <dump.json> [<dump.json>...]",
	Short: "Import skater, goalie or team dump files",
	Long: `Read per-game dump files produced by the data-fetch job and store their
series. Files may be plain JSON or compressed with gzip (.gz), bzip2 (.bz2),
zstd (.zst) or lz4 (.lz4).

The entity kind is taken from the file name (goalie_analysis*, team_analysis*,
player_analysis*) unless --kind is given. Re-importing an entity replaces its
stored series.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", "", "entity kind for every file: skater, goalie or team")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "decode and report without storing")
}

func runImport(_ *cobra.Command, args []string) error {
	kind, err := kindFlag(importKind)
	if err != nil {
		return err
	}

	var db *storage.DB
	if !importDryRun {
		db, err = openDB()
		if err != nil {
			return err
		}
		defer db.Close()
	}

	for _, path := range args {
		if err := importFile(db, path, kind); err != nil {
			return err
		}
	}
	return nil
}

func importFile(db *storage.DB, path string, kind model.Kind) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	log.Info().Str("file", filepath.Base(path)).Str("size", humanize.Bytes(uint64(info.Size()))).Msg("reading dump")

	f, err := dump.Load(path, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if f.Kind == model.KindUnknown {
		return fmt.Errorf("%s: cannot tell skaters, goalies and teams apart; pass --kind", path)
	}
	for i := range f.Records {
		if f.Records[i].Kind == model.KindUnknown {
			f.Records[i].Kind = f.Kind
		}
	}

	games := 0
	for _, r := range f.Records {
		for _, col := range r.Columns {
			games += len(col)
		}
	}
	if db == nil {
		fmt.Fprintf(os.Stdout, "%s: %d %ss, %s game values (dry run)\n",
			filepath.Base(path), len(f.Records), f.Kind, humanize.Comma(int64(games)))
		fmt.Fprintf(os.Stdout, "  columns: %s\n", strings.Join(columnUnion(f.Records), ", "))
		return nil
	}

	replaced, err := countStored(db, f.Records)
	if err != nil {
		return fmt.Errorf("check stored entities: %w", err)
	}
	if err := db.InsertRecords(f.Records, filepath.Base(path)); err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	log.Info().
		Str("file", filepath.Base(path)).
		Stringer("kind", f.Kind).
		Int("entities", len(f.Records)).
		Int("added", len(f.Records)-replaced).
		Int("replaced", replaced).
		Int("values", games).
		Msg("import complete")
	fmt.Fprintf(os.Stdout, "Imported %d %ss from %s (%d new, %d replaced, %s game values).\n",
		len(f.Records), f.Kind, filepath.Base(path), len(f.Records)-replaced, replaced, humanize.Comma(int64(games)))
	return nil
}

// countStored returns how many of recs are already stored and will be replaced.
func countStored(db *storage.DB, recs []model.RawRecord) (int, error) {
	n := 0
	for _, r := range recs {
		exists, err := db.EntityExists(r.Kind, r.ID)
		if err != nil {
			return 0, err
		}
		if exists {
			log.Debug().Stringer("kind", r.Kind).Str("id", r.ID).Msg("replacing stored entity")
			n++
		}
	}
	return n, nil
}

// columnUnion lists every column name found across recs, sorted.
func columnUnion(recs []model.RawRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range recs {
		for _, name := range series.ColumnNames(r) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}
