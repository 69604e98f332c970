package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

const (
	// CrashLogDir is the directory for crash logs relative to the base path
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep
	MaxCrashLogs = 10
)

// CrashContext stores what the CLI was doing when it panicked.
type CrashContext struct {
	mu          sync.RWMutex
	lastInput   string
	lastRequest string
	command     string
	version     string
	basePath    string
}

var globalContext = &CrashContext{}

// SetBasePath sets the directory crash logs are written under (typically ~/.smarttask).
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetVersion sets the application version for crash logs.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand sets the current command being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = cmd
}

// SetLastInput records the last pasted or loaded batch text.
func SetLastInput(input string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.lastInput = truncateForLog(strings.TrimSpace(input), 2000)
}

// SetLastRequest records a summary of the last analysis request.
func SetLastRequest(summary string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.lastRequest = truncateForLog(summary, 500)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Command     string    `json:"command"`
	PanicValue  string    `json:"panic_value"`
	StackTrace  string    `json:"stack_trace"`
	LastInput   string    `json:"last_input,omitempty"`
	LastRequest string    `json:"last_request,omitempty"`
	GoVersion   string    `json:"go_version"`
	OS          string    `json:"os"`
	Arch        string    `json:"arch"`
}

// HandlePanic recovers a panic, writes a crash log and exits with status 1.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		entry := createCrashLog(r)
		path, err := writeCrashLog(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n[CRASH] Failed to write crash log: %v\n", err)
			fmt.Fprintf(os.Stderr, "[CRASH] Panic: %v\n%s\n", r, entry.StackTrace)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "\nsmarttask hit an unexpected error.\n")
		fmt.Fprintf(os.Stderr, "A crash log has been saved to:\n  %s\n\n", path)
		os.Exit(1)
	}
}

func createCrashLog(panicValue any) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:   time.Now(),
		Version:     globalContext.version,
		Command:     globalContext.command,
		PanicValue:  fmt.Sprintf("%v", panicValue),
		StackTrace:  string(debug.Stack()),
		LastInput:   globalContext.lastInput,
		LastRequest: globalContext.lastRequest,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
	}
}

// writeCrashLog writes entry to disk and returns the file path.
func writeCrashLog(entry CrashLog) (string, error) {
	dir := getCrashLogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}

	if err := cleanOldCrashLogs(dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to clean old crash logs: %v\n", err)
	}

	path := getCrashLogPath(entry.Timestamp)
	if err := os.WriteFile(path, []byte(formatCrashLog(entry)), 0644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

func getCrashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = ".smarttask"
	}
	return filepath.Join(basePath, CrashLogDir)
}

func getCrashLogPath(t time.Time) string {
	filename := fmt.Sprintf("crash_%s.log", t.Format("20060102_150405"))
	return filepath.Join(getCrashLogDir(), filename)
}

func formatCrashLog(entry CrashLog) string {
	var sb strings.Builder
	rule := strings.Repeat("-", 80) + "\n"

	section := func(title, body string) {
		sb.WriteString("\n" + rule)
		sb.WriteString(title + "\n")
		sb.WriteString(rule)
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString("SMARTTASK CRASH LOG\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	fmt.Fprintf(&sb, "Timestamp: %s\n", entry.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", entry.Version)
	fmt.Fprintf(&sb, "Command:   %s\n", entry.Command)
	fmt.Fprintf(&sb, "Go:        %s\n", entry.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", entry.OS, entry.Arch)

	section("PANIC VALUE", entry.PanicValue)
	section("STACK TRACE", entry.StackTrace)
	if entry.LastInput != "" {
		section("LAST INPUT", entry.LastInput)
	}
	if entry.LastRequest != "" {
		section("LAST ANALYSIS REQUEST", entry.LastRequest)
	}

	sb.WriteString("\n" + strings.Repeat("=", 80) + "\n")
	return sb.String()
}

// cleanOldCrashLogs removes the oldest crash logs so that at most keep remain.
func cleanOldCrashLogs(dir string, keep int) error {
	logs, err := crashLogsIn(dir)
	if err != nil || len(logs) <= keep {
		return err
	}

	// os.ReadDir sorts by name, and names embed the timestamp.
	for _, path := range logs[:len(logs)-keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func crashLogsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	return logs, nil
}

// ListCrashLogs returns the crash logs currently on disk, oldest first.
func ListCrashLogs() ([]string, error) {
	return crashLogsIn(getCrashLogDir())
}
