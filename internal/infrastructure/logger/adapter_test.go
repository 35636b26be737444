package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"formfill", "formfill"},
		{"fill http://x/login", "fill_http___x_login"},
		{"///", "task"},
		{"", "task"},
		{strings.Repeat("a", 100), strings.Repeat("a", 60)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in))
	}
}

func TestNewLoggerAdapter_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLoggerAdapter(Config{Dir: dir, Name: "unit test", Level: "debug"})
	require.NoError(t, err)

	log.WithField("request", "r-1").Info("Task started", "url", "http://x/login")
	log.WithFields(map[string]any{"tool": "fill"}).Debug("Tool completed")
	require.NoError(t, log.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_unit_test.log"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"message":"Task started"`)
	assert.Contains(t, content, `"request":"r-1"`)
	assert.Contains(t, content, `"url":"http://x/login"`)
	assert.Contains(t, content, `"tool":"fill"`)
}

func TestNewLoggerAdapter_LevelFilters(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLoggerAdapter(Config{Dir: dir, Name: "levels", Level: "warn"})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewLoggerAdapter_InvalidLevel(t *testing.T) {
	_, err := NewLoggerAdapter(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLoggerAdapter_NoOutputsIsNop(t *testing.T) {
	log, err := NewLoggerAdapter(Config{Level: "info"})
	require.NoError(t, err)

	log.Error("goes nowhere")
	assert.NoError(t, log.Close())
}
