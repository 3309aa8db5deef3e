package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Schema overview:
  entities(kind, id, name, games, source_file, imported_at)
  game_values(kind, entity_id, metric, game_index, value)
  metric_lengths(kind, entity_id, metric, games)
  imports(id, source_file, kind, entities, imported_at)

kind is one of 'skater', 'goalie', 'team'. metric is the dump key, e.g.
'goals', 'shotsAgainst', 'period1Goals'. game_index starts at 0.

Example:
  nhlmetrics sql "SELECT entity_id, SUM(value) FROM game_values WHERE metric = 'goals' GROUP BY 1 ORDER BY 2 DESC LIMIT 10"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(_ *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
