package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Defaults(t *testing.T) {
	logger, err := New()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestWithLevel(t *testing.T) {
	logger, err := New(WithLevel("debug"))
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(WithLevel("error"))
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = New(WithLevel("loud"))
	require.Error(t, err)
}

func TestWithJSONAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	logger, err := New(
		WithJSON(true),
		WithOutput(path),
		WithFields(map[string]any{"component": "mixmaster", "": "dropped"}),
	)
	require.NoError(t, err)

	logger.Info("rendered")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "rendered", entry["msg"])
	assert.Equal(t, "mixmaster", entry["component"])
	assert.NotContains(t, entry, "")
}

func TestWithDevelopment(t *testing.T) {
	logger, err := New(WithDevelopment(true), WithOutput(filepath.Join(t.TempDir(), "dev.log")))
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
