package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/invertedv/nicsdf/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "json"})
	logger.Info("hidden")
	logger.Warn("shown", slog.Int("states", 49))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, 49.0, rec["states"])

	buf.Reset()
	logger = NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "text"})
	logger.Info("text", slog.String("stage", "census"))
	assert.Contains(t, buf.String(), "stage=census")
}

func TestNew_File(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, runID, closeLog, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: fileName})
	require.NoError(t, err)

	_, err = uuid.Parse(runID)
	assert.NoError(t, err)

	logger.Info("started")
	require.NoError(t, closeLog())

	b, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(b), runID)
	assert.Contains(t, string(b), RunIDKey)
}
