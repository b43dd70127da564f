package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWithDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", dir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Info("test info message", "key", "value")
	Warn("test warning message")
	Error("test error message")

	if _, err := os.Stat(filepath.Join(dir, "fitplan.log")); err != nil {
		t.Errorf("log file not written: %v", err)
	}
}

// redirectStderr points os.Stderr at a temp file until the test ends.
func redirectStderr(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stderr")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create stderr file: %v", err)
	}
	orig := os.Stderr
	os.Stderr = f
	t.Cleanup(func() {
		os.Stderr = orig
		f.Close()
	})
	return path
}

func TestStderrMirror(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		wantStderr bool
	}{
		{"file only", false, false},
		{"debug mirrors to stderr", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := redirectStderr(t)
			dir := t.TempDir()
			if err := Init(Config{Debug: tt.debug, Dir: dir}); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			Info("plan generated", "week", 2)

			logged, _ := os.ReadFile(filepath.Join(dir, "fitplan.log"))
			if !strings.Contains(string(logged), "plan generated") {
				t.Errorf("log file missing entry: %q", logged)
			}
			mirrored, _ := os.ReadFile(stderr)
			if got := strings.Contains(string(mirrored), "plan generated"); got != tt.wantStderr {
				t.Errorf("stderr has entry = %v, want %v (%q)", got, tt.wantStderr, mirrored)
			}
		})
	}
}

func TestInitDebugStderrOnly(t *testing.T) {
	if err := Init(Config{Debug: true}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	Debug("test debug message in debug mode")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("test debug message")
	Info("test info message")
	Warn("test warning message")
	Error("test error message")
}
