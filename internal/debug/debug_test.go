package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempLogPath(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	orig := logPathFunc
	logPathFunc = func() (string, error) {
		return filepath.Join(tmpDir, LogDirName, LogFileName), nil
	}
	t.Cleanup(func() {
		logPathFunc = orig
		resetForTest()
	})
	return filepath.Join(tmpDir, LogDirName, LogFileName)
}

func TestInit_Disabled(t *testing.T) {
	resetForTest()

	if err := Init(false); err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}
	if Enabled() {
		t.Error("Enabled() should return false when initialized with false")
	}

	// Logging should be no-ops
	Logf("test %s", "formatted")
	Event("reconcile", map[string]any{"op": "create"})
}

func TestInit_EnabledWritesLogFile(t *testing.T) {
	resetForTest()
	logPath := useTempLogPath(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	if !Enabled() {
		t.Fatal("Enabled() should return true when initialized with true")
	}

	Logf("request %s %d", "GET", 200)
	Event("reconcile", map[string]any{"op": "update", "id": "42"})
	Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	for _, want := range []string{"debug log started", "request GET 200", "reconcile id=42 op=update"} {
		if !strings.Contains(text, want) {
			t.Errorf("log file missing %q:\n%s", want, text)
		}
	}
}

func TestInit_TruncatesExistingLog(t *testing.T) {
	resetForTest()
	logPath := useTempLogPath(t)

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("stale content\n"), 0600); err != nil {
		t.Fatalf("write stale log: %v", err)
	}

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "stale content") {
		t.Error("log file should have been truncated")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	resetForTest()
	useTempLogPath(t)

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	Close()
	Close()
}

func TestInitWriter(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	var buf bytes.Buffer
	InitWriter(&buf)
	Event("load", map[string]any{"resource": "items", "err": "bad gateway"})

	got := strings.TrimSpace(buf.String())
	want := `load err="bad gateway" resource=items`
	if got != want {
		t.Fatalf("Event output = %q, want %q", got, want)
	}

	InitWriter(nil)
	if Enabled() {
		t.Fatal("expected InitWriter(nil) to disable logging")
	}
}

func TestGetLogPath(t *testing.T) {
	path, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(LogDirName, LogFileName)) {
		t.Errorf("GetLogPath() = %q, want suffix %q", path, filepath.Join(LogDirName, LogFileName))
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{"no fields", nil, "http"},
		{"sorted", map[string]any{"status": 200, "method": "GET"}, "http method=GET status=200"},
		{"quotes spaces", map[string]any{"err": "not found"}, `http err="not found"`},
		{"quotes empty", map[string]any{"id": ""}, `http id=""`},
		{"quotes equals", map[string]any{"q": "a=b"}, `http q="a=b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEvent("http", tt.fields); got != tt.want {
				t.Fatalf("formatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloseDisablesLogging(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	var buf bytes.Buffer
	InitWriter(&buf)
	Close()
	Logf("after close")
	if Enabled() || buf.Len() != 0 {
		t.Fatalf("expected nothing written after Close, got %q", buf.String())
	}
}

func resetForTest() {
	mu.Lock()
	defer mu.Unlock()
	detach()
}
