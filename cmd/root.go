package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/config"
	"github.com/pable/go-nhl-metrics/internal/logging"
	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/storage"
)

var (
	dbPath  string
	verbose bool
	noLog   bool

	cfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "nhlmetrics",
	Short: "NHL per-game statistics tool",
	Long: `Import per-game NHL statistics for skaters, goalies and teams and explore
their distributions: fitted normal curves, reference-line splits, period
transition heatmaps and over/under lines.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default $NHLMETRICS_HOME/metrics.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noLog, "no-log-file", false, "log to stderr only")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(overUnderCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func setup(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	logDir := cfg.LogDir
	if noLog {
		logDir = ""
	}
	if err := logging.Init(verbose, logDir); err != nil {
		log.Warn().Err(err).Msg("file logging disabled")
	}
	log.Debug().Str("db", dbPath).Str("home", cfg.HomeDir).Msg("configuration loaded")
	return nil
}

// openDB opens the database at dbPath, creating its directory first.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// resolveBundle finds the entity matching query (an id or a name prefix) and
// rebuilds its series bundle from storage. It returns a nil entity when
// nothing matches.
func resolveBundle(db *storage.DB, kind model.Kind, query string) (*model.Entity, series.Bundle, error) {
	e, err := db.FindEntity(kind, query)
	if err != nil {
		return nil, nil, fmt.Errorf("find entity: %w", err)
	}
	if e == nil {
		return nil, nil, nil
	}
	rec, err := db.GetRecord(e.Kind, e.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load series: %w", err)
	}
	if rec == nil {
		return nil, nil, fmt.Errorf("entity %s has no stored series", e.ID)
	}
	b, err := series.FromRecord(*rec)
	if err != nil {
		return nil, nil, err
	}
	return e, b, nil
}

// kindFlag parses the value of a --kind flag. Empty means any kind.
func kindFlag(s string) (model.Kind, error) {
	if s == "" {
		return model.KindUnknown, nil
	}
	k := model.ParseKind(s)
	if k == model.KindUnknown {
		return k, fmt.Errorf("unknown kind %q: want skater, goalie or team", s)
	}
	return k, nil
}

func curvePoints() int {
	if cfg == nil {
		return 0
	}
	return cfg.CurvePoints
}
