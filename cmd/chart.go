package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/chart"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

var (
	chartKind   string
	chartMetric string
	chartRef    string
	chartOut    string
	chartOpen   bool
)

var chartCmd = &cobra.Command{
	Use:   "chart <id-or-name>",
	Short: "Write an interactive HTML chart page for an entity",
	Long: `Render the histogram with fitted normal curve, over/under bars and, for
teams, the period transition heatmaps into a standalone HTML page.

The page is written to $NHLMETRICS_CHART_DIR/<kind>_<id>.html unless --out
is given. --open shows it in the default browser.`,
	Args: cobra.ExactArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartKind, "kind", "", "restrict the lookup to skater, goalie or team")
	chartCmd.Flags().StringVar(&chartMetric, "metric", "", "skater metric: points, goals, assists, shots or all")
	chartCmd.Flags().StringVar(&chartRef, "ref", "", "reference line shown in the chart subtitle")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output HTML file")
	chartCmd.Flags().BoolVar(&chartOpen, "open", false, "open the page in the default browser")
}

func runChart(_ *cobra.Command, args []string) error {
	kind, err := kindFlag(chartKind)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	e, b, err := resolveBundle(db, kind, args[0])
	if err != nil {
		return err
	}
	if e == nil {
		fmt.Fprintf(os.Stderr, "No entity found matching %q\n", args[0])
		return nil
	}

	out := chartOut
	if out == "" {
		out = filepath.Join(cfg.ChartDir, fmt.Sprintf("%s_%s.html", e.Kind, e.ID))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if tb, ok := b.(series.TeamSeriesBundle); ok {
		tv, err := viewer.Team(tb)
		if err != nil {
			return err
		}
		if err := chart.RenderTeam(f, tv); err != nil {
			return err
		}
	} else {
		opts := viewer.Options{CurvePoints: curvePoints(), Reference: viewer.ReferenceOption(chartRef)}
		views, err := metricViews(b, chartMetric, opts)
		if err != nil {
			return err
		}
		if err := chart.RenderMetrics(f, e.Name, views); err != nil {
			return err
		}
	}

	log.Info().Str("path", out).Str("entity", e.Name).Msg("chart written")
	fmt.Fprintf(os.Stdout, "Chart written to %s\n", out)
	if chartOpen {
		if err := browser.OpenFile(out); err != nil {
			log.Warn().Err(err).Str("path", out).Msg("could not open browser")
		}
	}
	return nil
}
