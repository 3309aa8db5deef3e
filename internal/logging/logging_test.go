package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init(true, dir))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Info().Str("case", "rotating").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestInit_ConsoleOnly(t *testing.T) {
	require.NoError(t, Init(false, ""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
