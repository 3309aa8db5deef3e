package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about everything stored in the database:
entity counts per kind, stored game values, recent imports and the entities
with the most games.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetDBOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Total() == 0 {
		fmt.Fprintln(os.Stdout, "Nothing stored yet. Run 'nhlmetrics import <dump.json>' to add data.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Skaters       : %d\n", ov.Skaters)
	fmt.Fprintf(os.Stdout, "  Goalies       : %d\n", ov.Goalies)
	fmt.Fprintf(os.Stdout, "  Teams         : %d\n", ov.Teams)
	fmt.Fprintf(os.Stdout, "  Game values   : %s\n", humanize.Comma(int64(ov.GameValues)))
	fmt.Fprintf(os.Stdout, "  Imports       : %d (last %s)\n", ov.Imports, importAge(ov.LastImport))

	imports, err := db.ListImports(10)
	if err != nil {
		return fmt.Errorf("list imports: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Recent Imports ---\n\n")
	it := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	it.Header("FILE", "KIND", "ENTITIES", "WHEN")
	for _, r := range imports {
		it.Append(r.SourceFile, r.Kind.String(), fmt.Sprintf("%d", r.Entities), importAge(r.ImportedAt))
	}
	it.Render()

	for _, k := range []model.Kind{model.KindSkater, model.KindGoalie, model.KindTeam} {
		top, err := db.TopEntitiesByGames(k, 5)
		if err != nil {
			return fmt.Errorf("top %ss: %w", k, err)
		}
		if len(top) == 0 {
			continue
		}
		fmt.Fprintf(os.Stdout, "\n--- Most Games: %ss ---\n\n", k)
		pt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		pt.Header("NAME", "ID", "GAMES")
		for _, e := range top {
			pt.Append(e.Name, e.ID, fmt.Sprintf("%d", e.Games))
		}
		pt.Render()
	}
	return nil
}

// importAge renders an RFC 3339 timestamp as a relative time.
func importAge(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}
