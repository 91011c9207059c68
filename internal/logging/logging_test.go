package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

func TestNewLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggingConfig{
		LogDir:     dir,
		Level:      "info",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
		Compress:   true,
	}
	_, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(dir, "server.log")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file, got error: %v", err)
	}
}

func TestNewLoggerRejectsInvalidRotation(t *testing.T) {
	cfg := config.LoggingConfig{
		LogDir:    t.TempDir(),
		MaxSizeMB: 0,
	}
	if _, err := NewLogger(cfg); err == nil {
		t.Fatalf("expected error for invalid rotation config")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatalf("expected debug level")
	}
	if parseLevel("WARN") != slog.LevelWarn {
		t.Fatalf("expected warn level")
	}
	if parseLevel("unknown") != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
