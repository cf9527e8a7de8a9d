package logging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestFileLogger(t *testing.T, format Format, level Level) (*FileLogger, string) {
	t.Helper()

	logPath := filepath.Join(t.TempDir(), "backup.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: format, Level: level})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "backup.log")

	logger, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestFileLogger_Appends(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatText, InfoLevel)
	logger.Info(context.Background(), "first session", nil)
	logger.Close()

	again, err := NewFileLogger(FileLoggerConfig{Path: logPath, Format: FormatText, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	again.Info(context.Background(), "second session", nil)
	again.Close()

	content := readLog(t, logPath)
	if !strings.Contains(content, "first session") || !strings.Contains(content, "second session") {
		t.Errorf("log should keep earlier entries, got:\n%s", content)
	}
}

func TestFileLogger_LogLevels(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatText, InfoLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", nil, nil)
	logger.Close()

	content := readLog(t, logPath)

	if strings.Contains(content, "debug message") {
		t.Error("Debug message should be filtered at INFO level")
	}
	for _, want := range []string{"info message", "warn message", "error message"} {
		if !strings.Contains(content, want) {
			t.Errorf("%q should be present", want)
		}
	}
}

func TestFileLogger_TextFormat(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatText, InfoLevel)

	logger.Error(context.Background(), "copy failed", errors.New("permission denied"),
		Fields{"source": "/src/a.txt", "destination": "/dst/a.txt"})
	logger.Close()

	content := readLog(t, logPath)

	if !strings.Contains(content, "[ERROR] copy failed") {
		t.Errorf("missing level marker and message: %s", content)
	}
	if !strings.Contains(content, `error="permission denied"`) {
		t.Errorf("missing error text: %s", content)
	}
	// Fields are written in key order
	if !strings.Contains(content, "destination=/dst/a.txt source=/src/a.txt") {
		t.Errorf("fields not sorted: %s", content)
	}
}

func TestFileLogger_JSONFormat(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatJSON, InfoLevel)

	logger.Info(context.Background(), "file copied", Fields{"source": "/src/a.txt", "bytes": 42})
	logger.Close()

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(readLog(t, logPath)), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["message"] != "file copied" {
		t.Errorf("message = %v, want 'file copied'", entry["message"])
	}
	if entry["source"] != "/src/a.txt" {
		t.Errorf("source = %v", entry["source"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp should be present")
	}
}

func TestFileLogger_ReservedKeysWin(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatJSON, InfoLevel)

	logger.Info(context.Background(), "real message", Fields{"message": "spoofed"})
	logger.Close()

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(readLog(t, logPath)), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["message"] != "real message" {
		t.Errorf("message = %v, want 'real message'", entry["message"])
	}
}

func TestFileLogger_WithFields(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatJSON, InfoLevel)

	child := logger.WithFields(Fields{"session_id": "abc"})
	child.Info(context.Background(), "test", Fields{"action": "copy"})
	logger.Close()

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(readLog(t, logPath)), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if entry["session_id"] != "abc" {
		t.Errorf("session_id = %v, want 'abc'", entry["session_id"])
	}
	if entry["action"] != "copy" {
		t.Errorf("action = %v, want 'copy'", entry["action"])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "backup.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       logPath,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    100, // Very small for testing
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		logger.Info(context.Background(), "This is a test message that is long enough to trigger rotation eventually", nil)
	}
	logger.Close()

	for _, p := range []string{logPath, logPath + ".1", logPath + ".2"} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("%s should exist after rotation", filepath.Base(p))
		}
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("only MaxBackups backups should be kept")
	}
}

func TestFileLogger_WriteAfterClose(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatText, InfoLevel)
	logger.Close()

	// Must not panic
	logger.Info(context.Background(), "late", nil)

	if strings.Contains(readLog(t, logPath), "late") {
		t.Error("entries after Close should be dropped")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logger, logPath := newTestFileLogger(t, FormatText, InfoLevel)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			child := logger.WithFields(Fields{"goroutine": id})
			for j := 0; j < 100; j++ {
				child.Info(ctx, "concurrent message", Fields{"iteration": j})
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	lines := strings.Split(strings.TrimSpace(readLog(t, logPath)), "\n")
	if len(lines) != 1000 {
		t.Errorf("Expected 1000 log lines, got %d", len(lines))
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", nil, nil)

	if logger.WithFields(Fields{"key": "value"}) == nil {
		t.Error("WithFields should return a logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"unknown", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.level.String(); result != tt.expected {
				t.Errorf("String() = %q, want %q", result, tt.expected)
			}
		})
	}
}
