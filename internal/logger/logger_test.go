package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestSyncCompletedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.SyncCompleted("run-1", 3, 2, 1, 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"sync completed", "run=run-1", "files_synced=3", "skipped=2", "errors=1", "duration=1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestDebugEventsHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Skipped("/maps/a.json", "unchanged")
	l.WatchEvent("/maps/a.json", "WRITE")
	if buf.Len() != 0 {
		t.Errorf("debug events should not be logged at info level: %q", buf.String())
	}

	buf.Reset()
	l = NewWithLevel(&buf, log.DebugLevel)
	l.Skipped("/maps/a.json", "unchanged")
	if !strings.Contains(buf.String(), "reason=unchanged") {
		t.Errorf("expected skipped event, got %q", buf.String())
	}
}

func TestConversionError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).With("component", "sync").ConversionError("/maps/a.json", "/flat/a.json", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "conversion failed") || !strings.Contains(out, "error=boom") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "component=sync") {
		t.Errorf("child logger lost its fields: %q", out)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindflat.log")

	l, cleanup, err := NewFileLogger(path, log.InfoLevel)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.Pruned("/maps/gone.json")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "source=/maps/gone.json") {
		t.Errorf("log file missing event: %q", data)
	}

	if _, _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), log.InfoLevel); err == nil {
		t.Error("expected error for missing directory")
	}
}
