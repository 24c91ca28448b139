package logger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/DropBy-app/dropby/logger"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func readEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), "line: %s", sc.Text())
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		wantCount int
	}{
		{"debug logs everything", "DEBUG", 4},
		{"info skips debug", "INFO", 3},
		{"warn keeps warn and error", "warn", 2},
		{"error keeps error only", "ERROR", 1},
		{"unknown falls back to info", "LOUD", 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := logger.New(tc.level, &buf)

			lg.Debug("d")
			lg.Info("i")
			lg.Warn("w")
			lg.Error("e")

			assert.Equal(t, tc.wantCount, len(readEntries(t, &buf)))
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New("INFO", &buf)

	lg.Info("task created", map[string]any{"requester": "Alice"})

	entries := readEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "task created", entries[0]["@message"])
	assert.Equal(t, "info", entries[0]["@level"])
	assert.Equal(t, "Alice", entries[0]["requester"])
}

func TestLogger_Task(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New("INFO", &buf)

	lg.Task("abc", "task completed", map[string]any{"notes": true})

	entries := readEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["task_id"])
	assert.Equal(t, "task", entries[0]["type"])
	assert.Equal(t, true, entries[0]["notes"])
}

func TestLogger_HTTP(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New("INFO", &buf)

	lg.HTTP("GET", "/tasks", 200, 3*time.Millisecond, map[string]any{"request_id": "r-1"})

	entries := readEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "HTTP request completed", entries[0]["@message"])
	assert.Equal(t, "GET", entries[0]["http_method"])
	assert.Equal(t, "/tasks", entries[0]["http_path"])
	assert.Equal(t, float64(200), entries[0]["http_status"])
	assert.Equal(t, "r-1", entries[0]["request_id"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New("INFO", &buf).With(map[string]any{"component": "board"})

	lg.Info("hello")

	entries := readEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "board", entries[0]["component"])
}
