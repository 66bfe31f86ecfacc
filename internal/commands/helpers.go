package commands

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LogSummary is what the status views extract from the log file.
type LogSummary struct {
	Lines       []string
	LastSync    time.Time
	FilesSynced int
	Errors      int
}

// ParseLogFile reads the last maxLines lines of the log and pulls the most
// recent "sync completed" event out of them.
func ParseLogFile(logPath string, maxLines int) LogSummary {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return LogSummary{Lines: []string{"Unable to read log file"}}
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	summary := LogSummary{Lines: lines}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.Contains(line, "sync completed") {
			continue
		}

		// 2026-10-14 14:11:57 INFO sync completed run=... files_synced=3
		if len(line) > len(time.DateTime) {
			if t, err := time.ParseInLocation(time.DateTime, line[:len(time.DateTime)], time.Local); err == nil {
				summary.LastSync = t
			}
		}
		summary.FilesSynced = intField(line, "files_synced")
		summary.Errors = intField(line, "errors")
		break
	}
	return summary
}

// intField extracts key=N from a logfmt line, best effort.
func intField(line, key string) int {
	idx := strings.Index(line, " "+key+"=")
	if idx == -1 {
		return 0
	}
	var n int
	_, _ = fmt.Sscanf(line[idx+1:], key+"=%d", &n) //nolint:errcheck // best effort parsing
	return n
}
