package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/stats"
)

var (
	transitionFrom string
	transitionTo   string
)

var transitionCmd = &cobra.Command{
	Use:   "transition <team>",
	Short: "Period-to-period goal transition matrices for a team",
	Long: `Print row-normalized transition matrices of a team: the share of games with
each goal count in the "to" period given the goal count in the "from" period.

Without flags both standard views are printed: period 1 → period 2 and
periods 1+2 → period 3. --from/--to pick any pair of team metrics
(period1Goals, period2Goals, period3Goals, firstTwoPeriodsGoals, totalGoals).`,
	Args: cobra.ExactArgs(1),
	RunE: runTransition,
}

func init() {
	transitionCmd.Flags().StringVar(&transitionFrom, "from", "", "source metric")
	transitionCmd.Flags().StringVar(&transitionTo, "to", "", "target metric")
}

func runTransition(_ *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	e, b, err := resolveBundle(db, model.KindTeam, args[0])
	if err != nil {
		return err
	}
	if e == nil {
		fmt.Fprintf(os.Stderr, "No team found matching %q\n", args[0])
		return nil
	}
	report.PrintEntityHeader(os.Stdout, e.Kind.String(), e.Name, e.ID, e.Games)

	if transitionFrom == "" && transitionTo == "" {
		return printTeam(os.Stdout, b.(series.TeamSeriesBundle))
	}
	if transitionFrom == "" || transitionTo == "" {
		return fmt.Errorf("--from and --to must be given together")
	}
	from, ok := b.Series(model.Metric(transitionFrom))
	if !ok {
		return fmt.Errorf("unknown team metric %q", transitionFrom)
	}
	to, ok := b.Series(model.Metric(transitionTo))
	if !ok {
		return fmt.Errorf("unknown team metric %q", transitionTo)
	}
	m, err := stats.BuildTransition(from, to)
	if err != nil {
		return fmt.Errorf("%s to %s: %w", transitionFrom, transitionTo, err)
	}
	report.PrintTransitionTable(os.Stdout,
		fmt.Sprintf("%s → %s", model.Metric(transitionFrom).Label(), model.Metric(transitionTo).Label()), m)
	return nil
}
