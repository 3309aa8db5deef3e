package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/storage"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

var (
	exportKind     string
	exportRef      string
	exportMinGames int
	exportOut      string
	exportFormat   string
)

// exportDoc is the top-level JSON document written by export.
type exportDoc struct {
	GeneratedAt string         `json:"generated_at"`
	Kind        string         `json:"kind,omitempty"`
	Reference   *float64       `json:"reference,omitempty"`
	Entities    []entityExport `json:"entities"`
}

// entityExport holds every computed view of one entity.
type entityExport struct {
	ID      string              `json:"id"`
	Kind    string              `json:"kind"`
	Name    string              `json:"name"`
	Games   int                 `json:"games"`
	Metrics []viewer.MetricView `json:"metrics,omitempty"`
	Team    *viewer.TeamView    `json:"team,omitempty"`
	Trend   viewer.TrendTable   `json:"trend"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export computed views of stored entities as JSON",
	Long: `Recompute the views of every stored entity (or one kind) and write them as
a single JSON document: summary, fitted curve, sigma bands, reference split,
over/under lines, team transition matrices and the game-by-game trend.

Entities are processed in parallel ($NHLMETRICS_EXPORT_WORKERS at a time).

With --format xlsx the same views are laid out as a spreadsheet with summary,
over/under and transition sheets; --out is then required.

Example:
  nhlmetrics export --kind goalie --ref 27.5 --out goalies.json
  nhlmetrics export --format xlsx --out season.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "only export one kind: skater, goalie or team")
	exportCmd.Flags().StringVar(&exportRef, "ref", "", "reference line applied to every metric")
	exportCmd.Flags().IntVar(&exportMinGames, "min-games", 0, "skip entities with fewer stored games")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or xlsx")
}

func runExport(cmd *cobra.Command, _ []string) error {
	kind, err := kindFlag(exportKind)
	if err != nil {
		return err
	}
	switch exportFormat {
	case "json":
	case "xlsx":
		if exportOut == "" {
			return fmt.Errorf("--format xlsx needs --out")
		}
	default:
		return fmt.Errorf("unknown format %q: want json or xlsx", exportFormat)
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := loadRecords(db, kind)
	if err != nil {
		return err
	}
	opts := viewer.Options{CurvePoints: curvePoints(), Reference: viewer.ReferenceOption(exportRef)}

	start := time.Now()
	entities, err := exportEntities(cmd.Context(), recs, opts, cfg.ExportWorkers)
	if err != nil {
		return err
	}
	log.Info().Int("entities", len(entities)).Dur("elapsed", time.Since(start)).Msg("views computed")

	if exportFormat == "xlsx" {
		return writeWorkbook(exportOut, entities)
	}

	doc := exportDoc{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Reference:   opts.Reference,
		Entities:    entities,
	}
	if kind != model.KindUnknown {
		doc.Kind = kind.String()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d entities)\n", exportOut, len(entities))
	return nil
}

func writeWorkbook(path string, entities []entityExport) error {
	entries := make([]report.WorkbookEntry, len(entities))
	for i, e := range entities {
		entries[i] = report.WorkbookEntry{Kind: e.Kind, ID: e.ID, Name: e.Name, Metrics: e.Metrics, Team: e.Team}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteWorkbook(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d entities)\n", path, len(entities))
	return nil
}

// loadRecords reads all stored records of kind that meet --min-games.
func loadRecords(db *storage.DB, kind model.Kind) ([]model.RawRecord, error) {
	var recs []model.RawRecord
	for _, k := range []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam} {
		if kind != model.KindUnknown && k != kind {
			continue
		}
		rs, err := db.GetRecords(k)
		if err != nil {
			return nil, fmt.Errorf("load %ss: %w", k, err)
		}
		for _, r := range rs {
			if storageGames(r) >= exportMinGames {
				recs = append(recs, r)
			}
		}
	}
	return recs, nil
}

// exportEntities computes the views of recs with at most workers goroutines.
// The result keeps the order of recs.
func exportEntities(ctx context.Context, recs []model.RawRecord, opts viewer.Options, workers int) ([]entityExport, error) {
	out := make([]entityExport, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, rec := range recs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ex, err := exportEntity(rec, opts)
			if err != nil {
				return fmt.Errorf("%s %s: %w", rec.Kind, rec.ID, err)
			}
			out[i] = ex
			log.Debug().Str("id", rec.ID).Stringer("kind", rec.Kind).Msg("exported")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func exportEntity(rec model.RawRecord, opts viewer.Options) (entityExport, error) {
	b, err := series.FromRecord(rec)
	if err != nil {
		return entityExport{}, err
	}
	ex := entityExport{
		ID:    rec.ID,
		Kind:  rec.Kind.String(),
		Name:  rec.Name,
		Games: storageGames(rec),
		Trend: viewer.Trend(b),
	}
	if tb, ok := b.(series.TeamSeriesBundle); ok {
		tv, err := viewer.Team(tb)
		if err != nil {
			return entityExport{}, err
		}
		ex.Team = &tv
		return ex, nil
	}
	views, err := metricViews(b, "all", opts)
	if err != nil {
		return entityExport{}, err
	}
	ex.Metrics = views
	return ex, nil
}

// storageGames is the longest stored column of r.
func storageGames(r model.RawRecord) int {
	n := 0
	for _, col := range r.Columns {
		n = max(n, len(col))
	}
	return n
}
