package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockpulse.log")
	logger := SetupLogger(LOG_LEVEL_PROD, path)

	logger.Debug("hidden")
	logger.Info("Fetching price series")
	_ = logger.Sync() // stdout may not support fsync

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1, "prod drops debug")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Fetching price series", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetupLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger := SetupLogger("WARN", path)
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("also kept")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dropped")
	assert.Contains(t, string(b), "kept")
	assert.Contains(t, string(b), "also kept")
}

func TestSetupLoggerWithoutFile(t *testing.T) {
	assert.NotNil(t, SetupLogger("debug", ""))
	assert.NotNil(t, SetupLogger("not-a-level", ""))
}

func TestSetupLoggerELK(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLoggerELK(&buf)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "ecs.version")
}
