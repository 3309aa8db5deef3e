// Package config resolves settings from .env files, environment variables
// and built-in defaults. Command-line flags override what Load returns.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultAnalyzeModel is the Anthropic model used by the analyze command.
const DefaultAnalyzeModel = "claude-haiku-4-5-20251001"

// AppConfig holds the resolved application settings.
type AppConfig struct {
	HomeDir         string
	DBPath          string
	LogDir          string
	ChartDir        string
	CurvePoints     int
	ExportWorkers   int
	AnthropicAPIKey string
	AnalyzeModel    string
}

// Load reads .env from the binary's directory and then the working directory
// (earlier files win, as godotenv never overrides a set variable) and builds
// the configuration.
func Load() (*AppConfig, error) {
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("loaded .env from binary directory")
		}
	}
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env from working directory")
	}

	home := getEnv("NHLMETRICS_HOME", filepath.Join(userHome(), ".nhlmetrics"))
	cfg := &AppConfig{
		HomeDir:         home,
		DBPath:          getEnv("NHLMETRICS_DB", filepath.Join(home, "metrics.db")),
		LogDir:          getEnv("LOGS_FOLDER", filepath.Join(home, "logs")),
		ChartDir:        getEnv("NHLMETRICS_CHART_DIR", filepath.Join(home, "charts")),
		CurvePoints:     getEnvInt("NHLMETRICS_CURVE_POINTS", 200),
		ExportWorkers:   getEnvInt("NHLMETRICS_EXPORT_WORKERS", 4),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnalyzeModel:    getEnv("NHLMETRICS_ANALYZE_MODEL", DefaultAnalyzeModel),
	}
	return cfg, nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid integer setting")
	}
	return fallback
}
