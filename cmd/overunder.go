package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/stats"
)

var (
	ouKind   string
	ouMetric string
)

var overUnderCmd = &cobra.Command{
	Use:   "overunder <id-or-name>",
	Short: "Over/under lines of one metric",
	Long: `Print the share of games strictly above each half-integer line from 0.5 up
to the series maximum, with a 95% Wilson interval.

The metric defaults to points for skaters, saves for goalies and total goals
for teams.`,
	Args: cobra.ExactArgs(1),
	RunE: runOverUnder,
}

func init() {
	overUnderCmd.Flags().StringVar(&ouKind, "kind", "", "restrict the lookup to skater, goalie or team")
	overUnderCmd.Flags().StringVar(&ouMetric, "metric", "", "metric name, e.g. shots or shotsAgainst")
}

func runOverUnder(_ *cobra.Command, args []string) error {
	kind, err := kindFlag(ouKind)
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

	m := model.Metric(ouMetric)
	if m == "" {
		m = defaultMetric(e.Kind)
	}
	values, ok := b.Series(m)
	if !ok {
		return fmt.Errorf("metric %q is not available for a %s", m, e.Kind)
	}

	report.PrintEntityHeader(os.Stdout, e.Kind.String(), e.Name, e.ID, e.Games)
	report.PrintOverUnderTable(os.Stdout, m.Label(), stats.BuildOverUnder(values))
	return nil
}

func defaultMetric(k model.Kind) model.Metric {
	switch k {
	case model.KindGoalie:
		return model.MetricSaves
	case model.KindTeam:
		return model.MetricTotalGoals
	default:
		return model.MetricPoints
	}
}
