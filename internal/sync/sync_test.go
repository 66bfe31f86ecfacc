package sync

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerunddev/mindflat/internal/config"
	"github.com/gerunddev/mindflat/internal/logger"
	"github.com/gerunddev/mindflat/internal/output"
	"github.com/gerunddev/mindflat/internal/parser"
	"github.com/gerunddev/mindflat/internal/state"
)

const goodDoc = `{
  "title": "Go",
  "nodes": [
    {"id": "1", "title": {"text": "<p>Go 🗺</p>"}, "location": {"x": 1, "y": 2},
     "nodes": [{"id": "2", "title": {"text": "<p>Tour</p>"}, "location": {"x": 3, "y": 4}, "nodes": []}]}
  ],
  "connections": []
}`

func testConfig() *config.Config {
	return &config.Config{
		InputDir:  filepath.FromSlash("/maps"),
		OutputDir: filepath.FromSlash("/flat"),
		LogFile:   "/tmp/test.log",
		Interval:  time.Second,
		Workers:   4,
		Format:    "json",
	}
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(path), []byte(content), 0o644))
}

func newTestSyncer(t *testing.T) (*Syncer, afero.Fs, *state.State) {
	t.Helper()
	fs := afero.NewMemMapFs()
	st := state.NewState()
	return NewSyncerFs(fs, testConfig(), st), fs, st
}

func TestScan(t *testing.T) {
	s, fs, _ := newTestSyncer(t)
	s.config.ExcludePatterns = []string{"drafts", "*.bak.json"}

	write(t, fs, "/maps/b.json", goodDoc)
	write(t, fs, "/maps/a/nested.json", goodDoc)
	write(t, fs, "/maps/notes.txt", "not a map")
	write(t, fs, "/maps/old.bak.json", goodDoc)
	write(t, fs, "/maps/drafts/wip.json", goodDoc)

	files, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.FromSlash("/maps/a/nested.json"),
		filepath.FromSlash("/maps/b.json"),
	}, files)
}

func TestScanSkipsOutputInsideInput(t *testing.T) {
	s, fs, _ := newTestSyncer(t)
	s.config.OutputDir = filepath.FromSlash("/maps/flat")

	write(t, fs, "/maps/a.json", goodDoc)
	write(t, fs, "/maps/flat/a.json", "{}")

	files, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.FromSlash("/maps/a.json")}, files)
}

func TestSyncConvertsAndSkipsUnchanged(t *testing.T) {
	s, fs, st := newTestSyncer(t)
	write(t, fs, "/maps/go.json", goodDoc)
	write(t, fs, "/maps/ml/deep.json", goodDoc)

	result, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.RunID)

	data, err := afero.ReadFile(fs, filepath.FromSlash("/flat/ml/deep.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category": "mindmap"`)
	assert.Contains(t, string(data), `"parent": "Go"`)

	tracked, ok := st.Get(filepath.FromSlash("/maps/go.json"))
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("/flat/go.json"), tracked.Output)

	again, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.FilesProcessed)
	assert.Equal(t, 2, again.FilesSkipped)

	forced, err := s.Sync(context.Background(), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, forced.FilesProcessed)
}

func TestSyncReconvertsForNewDestination(t *testing.T) {
	s, fs, st := newTestSyncer(t)
	source := filepath.FromSlash("/maps/go.json")
	write(t, fs, "/maps/go.json", goodDoc)

	_, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)

	s.SetFormat(output.FormatYAML)
	result, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesSkipped)

	exists, err := afero.Exists(fs, filepath.FromSlash("/flat/go.yaml"))
	require.NoError(t, err)
	assert.True(t, exists)

	tracked, _ := st.Get(source)
	assert.Equal(t, filepath.FromSlash("/flat/go.yaml"), tracked.Output)

	s.config.OutputDir = filepath.FromSlash("/other")
	result, err = s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)

	exists, err = afero.Exists(fs, filepath.FromSlash("/other/go.yaml"))
	require.NoError(t, err)
	assert.True(t, exists)

	again, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.FilesProcessed)
	assert.Equal(t, 1, again.FilesSkipped)
}

func TestSyncContainsDocumentFailures(t *testing.T) {
	s, fs, st := newTestSyncer(t)
	write(t, fs, "/maps/good.json", goodDoc)
	write(t, fs, "/maps/broken.json", `{"title": "x", "nodes": [`)
	write(t, fs, "/maps/untitled.json", `{"title": "x", "nodes": [{"id": "1", "location": {"x": 0, "y": 0}}]}`)

	var buf bytes.Buffer
	s.SetLogger(logger.New(&buf))

	result, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	require.Len(t, result.Errors, 2)

	var missing bool
	for _, e := range result.Errors {
		if errors.Is(e, parser.ErrMissingField) {
			missing = true
			assert.Contains(t, e.Error(), "untitled.json")
		}
	}
	assert.True(t, missing)

	exists, err := afero.Exists(fs, filepath.FromSlash("/flat/good.json"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, filepath.FromSlash("/flat/broken.json"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, tracked := st.Get(filepath.FromSlash("/maps/broken.json"))
	assert.False(t, tracked)

	assert.Contains(t, buf.String(), "conversion failed")
	assert.Contains(t, buf.String(), "files_synced=1")
}

func TestSyncDryRun(t *testing.T) {
	s, fs, st := newTestSyncer(t)
	write(t, fs, "/maps/go.json", goodDoc)

	var seen []DocumentResult
	result, err := s.Sync(context.Background(), Options{
		DryRun:   true,
		Progress: func(r DocumentResult) { seen = append(seen, r) },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	require.Len(t, seen, 1)
	assert.Equal(t, 1, seen[0].Nodes)
	assert.Equal(t, 1, seen[0].Subnodes)

	exists, _ := afero.Exists(fs, filepath.FromSlash("/flat/go.json"))
	assert.False(t, exists)
	assert.Empty(t, st.Sources())
}

func TestSyncPrunesRemovedDocuments(t *testing.T) {
	s, fs, st := newTestSyncer(t)
	write(t, fs, "/maps/a.json", goodDoc)
	write(t, fs, "/maps/b.json", goodDoc)

	_, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, st.Sources(), 2)

	require.NoError(t, fs.Remove(filepath.FromSlash("/maps/b.json")))

	result, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.FromSlash("/maps/b.json")}, result.Pruned)
	assert.Equal(t, []string{filepath.FromSlash("/maps/a.json")}, st.Sources())
}

func TestSyncYAML(t *testing.T) {
	s, fs, _ := newTestSyncer(t)
	s.SetFormat(output.FormatYAML)
	write(t, fs, "/maps/go.json", goodDoc)

	_, err := s.Sync(context.Background(), Options{})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, filepath.FromSlash("/flat/go.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "title: Go"))
}

func TestSyncCancelled(t *testing.T) {
	s, fs, _ := newTestSyncer(t)
	write(t, fs, "/maps/go.json", goodDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Sync(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncMissingInputDir(t *testing.T) {
	s, _, _ := newTestSyncer(t)
	_, err := s.Sync(context.Background(), Options{})
	assert.Error(t, err)
}

func TestConvertFile(t *testing.T) {
	s, fs, _ := newTestSyncer(t)
	write(t, fs, "/maps/go.json", goodDoc)

	doc, data, err := s.ConvertFile(filepath.FromSlash("/maps/go.json"))
	require.NoError(t, err)
	assert.Equal(t, "Go", doc.Title)
	assert.Equal(t, "Go", doc.Nodes[0].Text)
	assert.Contains(t, string(data), `"subnodes": [`)
}

func TestSyncResultString(t *testing.T) {
	start := time.Now()
	r := &SyncResult{
		FilesProcessed: 3,
		FilesSkipped:   1,
		Errors:         []error{errors.New("x")},
		StartTime:      start,
		EndTime:        start.Add(1500 * time.Millisecond),
	}
	assert.Equal(t, "Sync complete: 3 files converted, 1 unchanged, 1 errors (took 1.5s)", r.String())
}
