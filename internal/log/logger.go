// Package log provides logging to both console and file.
//
// Records are structured (zerolog). The log file receives every record at the
// configured level; the console only shows warnings and errors so command
// output stays readable.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the name of the log file created inside the log directory.
const FileName = "vidtally.log"

// Logger writes output to both console and a log file.
type Logger struct {
	file *os.File
	zl   zerolog.Logger
}

// New creates a logger writing JSON lines to <logDir>/vidtally.log and
// human-readable warnings to console. A nil console disables console output.
func New(logDir, level string, console io.Writer) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, FileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	writers := []io.Writer{file}
	if console != nil {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:        console,
				TimeFormat: time.Kitchen,
			}},
			Level: zerolog.WarnLevel,
		})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{file: file, zl: zl}, nil
}

// Zerolog returns the underlying structured logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// Path returns the log file path.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func parseLevel(level string) zerolog.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

var (
	mu           sync.RWMutex
	globalLogger *Logger
)

// Init initializes the global logger with warnings echoed to stderr.
func Init(logDir, level string) error {
	return install(logDir, level, os.Stderr)
}

// InitFileOnly initializes the global logger without console output, for
// hosts that own the terminal or stdio.
func InitFileOnly(logDir, level string) error {
	return install(logDir, level, nil)
}

func install(logDir, level string, console io.Writer) error {
	logger, err := New(logDir, level, console)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Close()
	}
	globalLogger = logger
	return nil
}

// Base returns the global logger, or a disabled logger before Init.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil {
		return zerolog.Nop()
	}
	return globalLogger.zl
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Close closes the global logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Close()
	globalLogger = nil
	return err
}
