package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRouting(t *testing.T) {
	var out, errs bytes.Buffer
	log, cleanup, err := Setup(Options{Level: slog.LevelInfo, Stdout: &out, Stderr: &errs})
	require.NoError(t, err)
	defer cleanup()

	log.Debug("hidden")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "info message")
	assert.Contains(t, out.String(), "warn message")
	assert.NotContains(t, out.String(), "error message")
	assert.Contains(t, errs.String(), "error message")
	assert.NotContains(t, errs.String(), "info message")
}

func TestJSONFormat(t *testing.T) {
	var out bytes.Buffer
	log, cleanup, err := Setup(Options{Format: "json", Stdout: &out, Stderr: &out})
	require.NoError(t, err)
	defer cleanup()

	log.With("component", "test").Info("hello", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])
}

func TestLogFileGetsAllLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	var sink bytes.Buffer
	log, cleanup, err := Setup(Options{Path: path, Stdout: &sink, Stderr: &sink})
	require.NoError(t, err)

	log.Info("to file")
	log.Error("also to file")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, string(data), "also to file")
}

func TestSetupBadPath(t *testing.T) {
	_, cleanup, err := Setup(Options{Path: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
