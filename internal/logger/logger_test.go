package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/vela/internal/config"
)

func TestNew_ConsoleOnly(t *testing.T) {
	logg, err := New(config.LoggingConfig{Level: "debug", Console: true})

	require.NoError(t, err)
	defer logg.Close()
	assert.Equal(t, zerolog.DebugLevel, logg.Get().GetLevel())
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logg, err := New(config.LoggingConfig{Level: "loud", Console: true})

	require.NoError(t, err)
	defer logg.Close()
	assert.Equal(t, zerolog.InfoLevel, logg.Get().GetLevel())
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vela.log")
	logg, err := New(config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	lg := logg.Get()
	lg.Info().Str("key", "value").Msg("hello")
	require.NoError(t, logg.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"key":"value"`)
}
