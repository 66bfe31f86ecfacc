package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}
	return NewWithLevel(f, level), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	return New(io.MultiWriter(writers...))
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}

// SyncStarted logs the start of a conversion pass
func (l *Logger) SyncStarted(runID, inputDir, outputDir string) {
	l.Info("sync started",
		"run", runID,
		"input_dir", inputDir,
		"output_dir", outputDir)
}

// SyncCompleted logs the end of a conversion pass
func (l *Logger) SyncCompleted(runID string, converted, skipped, errors int, duration time.Duration) {
	l.Info("sync completed",
		"run", runID,
		"files_synced", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// DocumentConverted logs a successfully written document
func (l *Logger) DocumentConverted(source, dest string, nodes, subnodes, connections int) {
	l.Info("document converted",
		"source", source,
		"dest", dest,
		"nodes", nodes,
		"subnodes", subnodes,
		"connections", connections)
}

// ConversionError logs a document that failed to convert
func (l *Logger) ConversionError(source, dest string, err error) {
	l.Error("conversion failed",
		"source", source,
		"dest", dest,
		"error", err)
}

// Skipped logs when a document is skipped
func (l *Logger) Skipped(source, reason string) {
	l.Debug("document skipped",
		"source", source,
		"reason", reason)
}

// Pruned logs a source that disappeared since the last pass
func (l *Logger) Pruned(source string) {
	l.Info("document removed from state",
		"source", source)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(inputDir, outputDir string, interval time.Duration, workers int) {
	l.Debug("config loaded",
		"input_dir", inputDir,
		"output_dir", outputDir,
		"interval", interval,
		"workers", workers)
}

// WatchEvent logs a filesystem event that triggered a pass
func (l *Logger) WatchEvent(path, op string) {
	l.Debug("change detected",
		"path", path,
		"op", op)
}
