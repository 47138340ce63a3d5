package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"modeldash/internal/core"
)

// LogLevel defines the severity level for log messages.
type LogLevel int

// Log level constants.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelTags = map[LogLevel]string{
	DEBUG: "[DEBUG] ",
	INFO:  "[INFO] ",
	WARN:  "[WARN] ",
	ERROR: "[ERROR] ",
	FATAL: "[FATAL] ",
}

// AppLogger is the application logger implementation.
// Loggers derived with WithComponent share the underlying writer and file handle.
type AppLogger struct {
	logger    *log.Logger
	minLevel  LogLevel
	component string
	file      *os.File
	mu        *sync.Mutex
}

// NewAppLoggerWithConfig creates a logger writing to output.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	minLevel := INFO
	if debugMode {
		minLevel = DEBUG
	}
	return &AppLogger{
		logger:   log.New(output, "", log.LstdFlags),
		minLevel: minLevel,
		mu:       &sync.Mutex{},
	}
}

// WithComponent returns a logger that tags every line with component.
func (l *AppLogger) WithComponent(component string) *AppLogger {
	if l == nil {
		return nil
	}
	child := *l
	child.component = component
	return &child
}

func (l *AppLogger) output(level LogLevel, format string, args []any) {
	if l == nil || level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		msg = "[" + l.component + "] " + msg
	}
	if level == FATAL {
		l.logger.Fatal(levelTags[level] + msg)
	}
	l.logger.Print(levelTags[level] + msg)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) { l.output(DEBUG, format, args) }

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) { l.output(INFO, format, args) }

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) { l.output(WARN, format, args) }

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) { l.output(ERROR, format, args) }

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l == nil {
		log.Fatalf("[FATAL] "+format, args...)
	}
	l.output(FATAL, format, args)
}

// Close closes the log file, if any. Safe to call more than once.
func (l *AppLogger) Close() error {
	if l == nil || l.mu == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// containsPathTraversal reports whether path climbs out of its directory.
func containsPathTraversal(path string) bool {
	if path == "" {
		return false
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// openLogFile resolves DEBUG_FILE, falling back to stdout on any problem.
func openLogFile(path string) (io.Writer, *os.File) {
	if path == "" {
		return os.Stdout, nil
	}
	if len(path) > core.MaxDebugFilePathLength {
		log.Printf("[WARN] %s path too long, falling back to stdout", core.EnvDebugFile)
		return os.Stdout, nil
	}
	if containsPathTraversal(path) {
		log.Printf("[WARN] %s contains path traversal, falling back to stdout", core.EnvDebugFile)
		return os.Stdout, nil
	}

	//nolint:gosec // G304: path from env var, checked by containsPathTraversal
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		log.Printf("[WARN] Failed to open %s '%s': %v, falling back to stdout", core.EnvDebugFile, path, err)
		return os.Stdout, nil
	}
	return file, file
}

// IsDebug returns whether the app is running in debug mode.
func IsDebug() bool {
	return os.Getenv(core.EnvGinMode) == "debug"
}

// CreateLogger creates the process logger from the environment.
func CreateLogger() *AppLogger {
	output, file := openLogFile(os.Getenv(core.EnvDebugFile))
	logger := NewAppLoggerWithConfig(output, IsDebug())
	logger.file = file
	return logger
}
