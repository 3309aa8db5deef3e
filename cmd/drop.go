package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dropForce  bool
	dropEntity string
	dropKind   string
)

// dropCmd deletes the metrics database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database",
	Long: `Permanently delete the SQLite metrics database, or with --entity a single
stored skater, goalie or team. Re-import your dump files afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropEntity, "entity", "", "delete only this entity (id or name prefix)")
	dropCmd.Flags().StringVar(&dropKind, "kind", "", "restrict --entity to skater, goalie or team")
}

func runDrop(_ *cobra.Command, _ []string) error {
	if dropEntity != "" {
		return dropOne()
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	removed, err := removeDBFiles(dbPath)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

// removeDBFiles deletes the database at path and its WAL sidecar files.
// It reports whether the database file itself existed.
func removeDBFiles(path string) (bool, error) {
	removed := true
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("remove database: %w", err)
		}
		removed = false
	}
	for _, side := range []string{path + "-wal", path + "-shm"} {
		if err := os.Remove(side); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", side, err)
		}
	}
	return removed, nil
}

func dropOne() error {
	kind, err := kindFlag(dropKind)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := db.FindEntity(kind, dropEntity)
	if err != nil {
		return fmt.Errorf("find entity: %w", err)
	}
	if e == nil {
		fmt.Fprintf(os.Stderr, "No entity found matching %q\n", dropEntity)
		return nil
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete %s %s (%s, %d games).\n", e.Kind, e.Name, e.ID, e.Games)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := db.DeleteEntity(e.Kind, e.ID); err != nil {
		return fmt.Errorf("delete %s: %w", e.ID, err)
	}
	log.Info().Stringer("kind", e.Kind).Str("id", e.ID).Msg("entity deleted")
	fmt.Fprintf(os.Stdout, "Deleted %s %s (%s)\n", e.Kind, e.Name, e.ID)
	return nil
}
