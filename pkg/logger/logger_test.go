package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_WritesJSONToConfiguredPath(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "info", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	// Act
	log.Debug("dropped")
	log.Info("recipe created", zap.Int64("recipe_id", 7))
	require.NoError(t, log.Sync())

	// Assert
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "recipe created", lines[0]["msg"])
	assert.EqualValues(t, 7, lines[0]["recipe_id"])
	assert.Contains(t, lines[0], "caller")
}

func TestNew_AtomicLevelChangesAtRuntime(t *testing.T) {
	log, err := New(Config{Level: "warn", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	log.Level.SetLevel(zapcore.DebugLevel)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
