package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
)

var listKind string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored skaters, goalies and teams",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "only list one kind: skater, goalie or team")
}

func runList(_ *cobra.Command, _ []string) error {
	kind, err := kindFlag(listKind)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	kinds := []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam}
	if kind != model.KindUnknown {
		kinds = []model.Kind{kind}
	}

	shown := 0
	for _, k := range kinds {
		ents, err := db.ListEntities(k)
		if err != nil {
			return fmt.Errorf("list %ss: %w", k, err)
		}
		if len(ents) == 0 {
			continue
		}
		metrics := model.PrimaryMetrics(k)
		totals, err := db.MetricTotals(k, metrics)
		if err != nil {
			return fmt.Errorf("totals for %ss: %w", k, err)
		}
		report.PrintEntityTable(os.Stdout, k, ents, metrics, totals)
		shown += len(ents)
	}
	if shown == 0 {
		fmt.Fprintln(os.Stdout, "Nothing stored yet. Run 'nhlmetrics import <dump.json>' to add data.")
	}
	return nil
}
