// Package debug is tally's opt-in diagnostic log. Nothing is written unless
// Init(true) or InitWriter was called; the file at ~/.tally/debug.log is
// truncated on every launch.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user's home holding the log.
	LogDirName = ".tally"
)

var (
	mu     sync.RWMutex
	logger *log.Logger // nil while disabled
	file   *os.File

	// logPathFunc is swapped by tests.
	logPathFunc = homeLogPath
)

// Init turns file logging on or off. Turning it on truncates the log.
func Init(enable bool) error {
	mu.Lock()
	defer mu.Unlock()
	detach()
	if !enable {
		return nil
	}

	path, err := logPathFunc()
	if err != nil {
		return fmt.Errorf("determine log path: %w", err)
	}
	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	//nolint:gosec // G304: path is derived from the user's home
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	file = f
	logger = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Printf("=== tally debug log started at %s ===", time.Now().Format(time.RFC3339))
	return nil
}

// InitWriter sends log lines to w without timestamps. A nil w disables
// logging.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	detach()
	if w != nil {
		logger = log.New(w, "", 0)
	}
}

// Close releases the log file. Logging stays disabled until the next Init.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	detach()
}

// detach closes the current file and disables logging. Callers hold mu.
func detach() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
	logger = nil
}

// Enabled reports whether log lines are currently written anywhere.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return logger != nil
}

// Logf writes a formatted line when logging is enabled.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if logger != nil {
		logger.Printf(format, v...)
	}
}

// Event writes msg followed by key=value pairs in key order:
//
//	reconcile id=42 op=update outcome=ok
func Event(msg string, fields map[string]any) {
	mu.RLock()
	defer mu.RUnlock()
	if logger != nil {
		logger.Print(formatEvent(msg, fields))
	}
}

func formatEvent(msg string, fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		val := fmt.Sprint(fields[k])
		if val == "" || strings.ContainsAny(val, " \t\"=") {
			val = fmt.Sprintf("%q", val)
		}
		fmt.Fprintf(&b, " %s=%s", k, val)
	}
	return b.String()
}

func homeLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns where Init(true) writes.
func GetLogPath() (string, error) {
	return logPathFunc()
}
