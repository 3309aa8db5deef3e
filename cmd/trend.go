package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

var trendKind string

var trendCmd = &cobra.Command{
	Use:   "trend <id-or-name>",
	Short: "Game-by-game listing of every metric of an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendKind, "kind", "", "restrict the lookup to skater, goalie or team")
}

func runTrend(_ *cobra.Command, args []string) error {
	kind, err := kindFlag(trendKind)
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
	report.PrintTrendTable(os.Stdout, viewer.Trend(b))
	return nil
}
