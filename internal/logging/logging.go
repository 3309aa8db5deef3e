// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotating log file written under the log directory.
const FileName = "nhlmetrics.log"

// Init points the global logger at stderr and, when logDir is non-empty and
// writable, at a rotating file in logDir. Console output is coloured only on
// a terminal.
func Init(verbose bool, logDir string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal,
	}

	if logDir == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    8, // megabytes
		MaxBackups: 10,
		MaxAge:     90, // days
		Compress:   true,
	}
	multi := zerolog.MultiLevelWriter(io.Writer(console), file)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return nil
}
