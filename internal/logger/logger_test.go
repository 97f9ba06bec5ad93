package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "info", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "debug", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := InitWithFileConfig(tt.level, FileConfig{}, &buf); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestInvalidLevel(t *testing.T) {
	if err := InitWithFileConfig("loud", FileConfig{}, nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "cylmesh.log")
	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false
	if err := InitWithFileConfig("info", cfg, nil); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Sugar.Infow("mesh generated", "segments", 8)
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"segments":8`) {
		t.Errorf("structured field missing from log file: %s", content)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/cylmesh.log")
	if cfg.Path != "/tmp/cylmesh.log" {
		t.Errorf("expected path /tmp/cylmesh.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 28 {
		t.Errorf("unexpected rotation settings %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
