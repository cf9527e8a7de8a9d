package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, InfoLevel, FormatJSON)

	logger.Debug(context.Background(), "hidden", nil)
	logger.WithFields(Fields{"session_id": "s1"}).
		Error(context.Background(), "copy failed", errors.New("disk full"), Fields{"source": "/src/a"})
	require.NoError(t, logger.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["lvl"])
	assert.Equal(t, "copy failed", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "/src/a", entry["source"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestConsoleLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, DebugLevel, FormatText)

	logger.Debug(context.Background(), "scanning", Fields{"root": "/src"})
	logger.Close()

	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "scanning")
	assert.Contains(t, buf.String(), "/src")
}

type recordingLogger struct {
	NullLogger
	messages []string
	closed   bool
}

func (r *recordingLogger) Info(ctx context.Context, msg string, fields Fields) {
	r.messages = append(r.messages, msg)
}

func (r *recordingLogger) WithFields(fields Fields) Logger { return r }

func (r *recordingLogger) Close() error {
	r.closed = true
	return nil
}

func TestTee(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, ok := Tee(nil, nil).(*NullLogger)
		assert.True(t, ok)
	})

	t.Run("Single", func(t *testing.T) {
		r := &recordingLogger{}
		assert.Same(t, r, Tee(nil, r))
	})

	t.Run("FanOut", func(t *testing.T) {
		a, b := &recordingLogger{}, &recordingLogger{}
		logger := Tee(a, b).WithFields(Fields{"k": "v"})

		logger.Info(context.Background(), "hello", nil)
		require.NoError(t, logger.Close())

		assert.Equal(t, []string{"hello"}, a.messages)
		assert.Equal(t, []string{"hello"}, b.messages)
		assert.True(t, a.closed && b.closed)
	})
}
