package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestConfigureConsoleAndFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "pointshade.log")

	closer, err := Configure(Options{Level: "debug", File: path, Console: &console})
	require.NoError(t, err)

	log.Debug().Str("context", "test").Msg("palette_set")
	require.NoError(t, closer())

	assert.Contains(t, console.String(), "palette_set")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"message":"palette_set"`))
}

func TestConfigureLevelFilters(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var console bytes.Buffer
	_, err := Configure(Options{Level: "error", Console: &console})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Error().Msg("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestConfigureQuiet(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	closer, err := Configure(Options{Quiet: true})
	require.NoError(t, err)
	assert.NoError(t, closer())
	log.Info().Msg("dropped")
}
