// Package logger provides leveled logging for the analyzer with an optional
// log file. Messages are printf-formatted and rendered by zap with a
// timestamp and a bracketed severity, e.g. "2026-01-14 10:23:45 [INFO] ...".
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// DEBUG level for detailed diagnostic information (debug mode only)
	DEBUG LogLevel = iota
	// INFO level for general informational messages
	INFO
	// WARNING level for skipped entries and other recoverable conditions
	WARNING
	// ERROR level for failures that still allow the run to continue
	ERROR
)

const timestampLayout = "2006-01-02 15:04:05"

// Logger routes messages to the console and, optionally, a log file.
// The console sink can be swapped at runtime so a full-screen UI can
// silence it without losing file output.
type Logger struct {
	level      LogLevel
	fileWriter io.WriteCloser
	console    *switchWriter
	sugar      *zap.SugaredLogger
}

var (
	// globalLogger is the process-wide logger configured by SetupLogging
	globalLogger *Logger
)

// switchWriter is an io.Writer whose destination can be replaced.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// SetupLogging initializes the global logger.
//
// Parameters:
//   - verbose: If true, enables DEBUG level logging
//   - logFile: If non-empty, log entries are also appended to this file
//
// Returns an error if the log file cannot be created or opened.
func SetupLogging(verbose bool, logFile string) error {
	level := INFO
	if verbose {
		level = DEBUG
	}

	var fileWriter io.WriteCloser
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		fileWriter = f
	}

	globalLogger = newLogger(level, os.Stderr, fileWriter)
	return nil
}

// newLogger builds a Logger writing to console and, when non-nil, file.
func newLogger(level LogLevel, console io.Writer, file io.WriteCloser) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timestampLayout),
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	enabler := zap.NewAtomicLevelAt(toZapLevel(level))

	sink := &switchWriter{w: console}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(sink), enabler),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(file), enabler))
	}

	return &Logger{
		level:      level,
		fileWriter: file,
		console:    sink,
		sugar:      zap.New(zapcore.NewTee(cores...)).Sugar(),
	}
}

// SetConsoleOutput redirects console logging, typically to io.Discard while
// the interactive browser owns the terminal. The log file is unaffected.
func SetConsoleOutput(w io.Writer) {
	if globalLogger == nil {
		return
	}
	globalLogger.console.set(w)
}

// Close flushes and closes the log file if one was opened.
// It is safe to call more than once and without a log file.
func Close() error {
	if globalLogger == nil {
		return nil
	}
	_ = globalLogger.sugar.Sync()
	if globalLogger.fileWriter != nil {
		err := globalLogger.fileWriter.Close()
		globalLogger.fileWriter = nil
		return err
	}
	return nil
}

// Debug logs a debug-level message (only shown with --debug).
func Debug(format string, args ...interface{}) {
	logMessage(DEBUG, format, args...)
}

// Info logs an informational message.
func Info(format string, args ...interface{}) {
	logMessage(INFO, format, args...)
}

// Warning logs a warning message.
func Warning(format string, args ...interface{}) {
	logMessage(WARNING, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	logMessage(ERROR, format, args...)
}

// LogFileError logs a failed deletion of a specific path.
//
// Example output:
//
//	2026-01-14 10:23:45 [ERROR] Failed to delete file
//	  Path: /Volumes/3To/Films/old.mkv
//	  Reason: permission denied
func LogFileError(path string, err error) {
	if globalLogger == nil {
		return
	}
	globalLogger.sugar.Errorf("Failed to delete file\n  Path: %s\n  Reason: %v", path, err)
}

// LogFileWarning logs an entry skipped during traversal.
//
// Example output:
//
//	2026-01-14 10:23:45 [WARNING] Skipped entry
//	  Path: /Volumes/3To/private
//	  Reason: open /Volumes/3To/private: permission denied
func LogFileWarning(path string, reason string) {
	if globalLogger == nil {
		return
	}
	globalLogger.sugar.Warnf("Skipped entry\n  Path: %s\n  Reason: %s", path, reason)
}

// logMessage filters by level and hands the message to zap.
// Without SetupLogging it falls back to the standard logger.
func logMessage(level LogLevel, format string, args ...interface{}) {
	if globalLogger == nil {
		log.Printf(format, args...)
		return
	}

	if level < globalLogger.level {
		return
	}

	switch level {
	case DEBUG:
		globalLogger.sugar.Debugf(format, args...)
	case INFO:
		globalLogger.sugar.Infof(format, args...)
	case WARNING:
		globalLogger.sugar.Warnf(format, args...)
	default:
		globalLogger.sugar.Errorf(format, args...)
	}
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) LogLevel {
	switch {
	case level <= zapcore.DebugLevel:
		return DEBUG
	case level == zapcore.InfoLevel:
		return INFO
	case level == zapcore.WarnLevel:
		return WARNING
	default:
		return ERROR
	}
}

// encodeLevel renders levels as "[INFO]", "[WARNING]", ...
func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + levelToString(fromZapLevel(level)) + "]")
}

// levelToString converts a LogLevel to its string representation.
func levelToString(level LogLevel) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
