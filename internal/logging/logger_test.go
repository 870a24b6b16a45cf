package logging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseLevel(tc.input), "level %q", tc.input)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, fmt.Errorf("boom"), "warn message")
	logger.Error(ctx, nil, "error message")
	out := buf.String()
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "error message")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelInfo, Output: &buf, Format: "json"})

	scoped := logger.With("site", "blog").WithComponent("scanner")
	scoped.Info(context.Background(), "scan done", "posts", 3)

	out := buf.String()
	assert.Contains(t, out, `"site":"blog"`)
	assert.Contains(t, out, `"component":"scanner"`)
	assert.Contains(t, out, `"posts":3`)
}

func TestFileLoggerWritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLogger(&Config{Level: LevelInfo}, dir)
	require.NoError(t, err)

	fl.Info(context.Background(), "hello from the file logger")
	require.NoError(t, fl.Close())

	name := fmt.Sprintf("quill-%s.log", time.Now().Format("2006-01-02"))
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from the file logger")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelInfo, Output: &buf, Format: "json"})

	logger.StartOperation("site-build").End(context.Background())
	out := buf.String()
	assert.Contains(t, out, `"operation":"site-build"`)
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "duration_ms")

	buf.Reset()
	logger.StartOperation("site-build").EndWithError(context.Background(), fmt.Errorf("disk full"))
	out = buf.String()
	assert.Contains(t, out, "Operation failed")
	assert.Contains(t, out, "disk full")
}
