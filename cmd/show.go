package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

var (
	showKind   string
	showMetric string
	showRef    string
)

var showCmd = &cobra.Command{
	Use:   "show <id-or-name>",
	Short: "Show the distribution view of a skater, goalie or team",
	Long: `Print the stats box, per-value histogram with the fitted normal, optional
reference-line split and over/under lines of an entity.

Goalies show shots against, saves and goals against. Skaters show one metric
(points by default; --metric goals|assists|shots|points|all). Teams show the
period transition matrices and total goals.

The entity is matched by exact id first, then by case-insensitive name prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showKind, "kind", "", "restrict the lookup to skater, goalie or team")
	showCmd.Flags().StringVar(&showMetric, "metric", "", "skater metric: points, goals, assists, shots or all")
	showCmd.Flags().StringVar(&showRef, "ref", "", "reference line, e.g. 2.5 (ignored if not a number)")
}

func runShow(_ *cobra.Command, args []string) error {
	kind, err := kindFlag(showKind)
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
	report.PrintEntityHeader(os.Stdout, e.Kind.String(), e.Name, e.ID, e.Games)
	return printBundle(os.Stdout, b, showMetric, showRef)
}

// printBundle renders the text view of b. metric only applies to skaters.
func printBundle(w io.Writer, b series.Bundle, metric, ref string) error {
	if tb, ok := b.(series.TeamSeriesBundle); ok {
		return printTeam(w, tb)
	}
	opts := viewer.Options{CurvePoints: curvePoints(), Reference: viewer.ReferenceOption(ref)}
	views, err := metricViews(b, metric, opts)
	if err != nil {
		return err
	}

	report.PrintSummaryTable(w, views)
	report.PrintReferenceTable(w, views)
	for _, v := range views {
		fmt.Fprintf(w, "\n--- %s ---\n\n", v.Label)
		report.PrintHistogram(w, v)
		fmt.Fprintln(w)
		report.PrintOverUnderTable(w, v.Label, v.OverUnder)
	}
	return nil
}

// metricViews builds the goalie panels or the selected skater metrics of b.
func metricViews(b series.Bundle, metric string, opts viewer.Options) ([]viewer.MetricView, error) {
	switch bb := b.(type) {
	case series.GoalieSeriesBundle:
		return viewer.Goalie(bb, opts)
	case series.SkaterSeriesBundle:
		metrics, err := skaterMetrics(metric)
		if err != nil {
			return nil, err
		}
		views := make([]viewer.MetricView, 0, len(metrics))
		for _, m := range metrics {
			v, err := viewer.Skater(bb, m, opts)
			if err != nil {
				return nil, err
			}
			views = append(views, v)
		}
		return views, nil
	default:
		return nil, fmt.Errorf("no metric view for a %s", b.EntityKind())
	}
}

func printTeam(w io.Writer, b series.TeamSeriesBundle) error {
	tv, err := viewer.Team(b)
	if err != nil {
		return err
	}
	report.PrintTransitionTable(w, "1st period → 2nd period goals", tv.P1ToP2)
	report.PrintTransitionTable(w, "1st+2nd periods → 3rd period goals", tv.FirstTwoToP3)

	total, err := viewer.BuildMetric(b, model.MetricTotalGoals, viewer.Options{CurvePoints: curvePoints()})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n--- %s ---\n\n", total.Label)
	report.PrintSummaryTable(w, []viewer.MetricView{total})
	report.PrintOverUnderTable(w, "Total", tv.TotalLines)
	return nil
}

// skaterMetrics maps the --metric flag to skater metrics. Empty means points.
func skaterMetrics(s string) ([]model.Metric, error) {
	switch s {
	case "":
		return []model.Metric{model.MetricPoints}, nil
	case "all":
		return viewer.SkaterMetrics, nil
	}
	for _, m := range viewer.SkaterMetrics {
		if string(m) == s {
			return []model.Metric{m}, nil
		}
	}
	return nil, fmt.Errorf("unknown skater metric %q: want points, goals, assists, shots or all", s)
}
