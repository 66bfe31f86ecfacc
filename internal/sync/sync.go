package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/gerunddev/mindflat/internal/config"
	"github.com/gerunddev/mindflat/internal/convert"
	"github.com/gerunddev/mindflat/internal/logger"
	"github.com/gerunddev/mindflat/internal/output"
	"github.com/gerunddev/mindflat/internal/parser"
	"github.com/gerunddev/mindflat/internal/state"
)

// DocumentExt is the extension of MindNode JSON exports.
const DocumentExt = ".json"

// Syncer converts every changed document under the input directory.
type Syncer struct {
	config *config.Config
	state  *state.State
	fs     afero.Fs
	log    *logger.Logger
	writer *output.Writer
	format output.Format
}

// NewSyncer creates a new syncer on the OS filesystem.
func NewSyncer(cfg *config.Config, st *state.State) *Syncer {
	return NewSyncerFs(afero.NewOsFs(), cfg, st)
}

// NewSyncerFs creates a syncer on fs.
func NewSyncerFs(fs afero.Fs, cfg *config.Config, st *state.State) *Syncer {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		format = output.FormatJSON
	}
	return &Syncer{
		config: cfg,
		state:  st,
		fs:     fs,
		log:    logger.Discard(),
		writer: output.NewWriter(fs),
		format: format,
	}
}

// SetLogger sets the logger used for sync events.
func (s *Syncer) SetLogger(l *logger.Logger) {
	s.log = l
}

// SetFormat overrides the configured output format.
func (s *Syncer) SetFormat(f output.Format) {
	s.format = f
}

// Fs returns the filesystem the syncer works on.
func (s *Syncer) Fs() afero.Fs {
	return s.fs
}

// Options control a single pass.
type Options struct {
	// DryRun converts but writes neither outputs nor state.
	DryRun bool
	// Force converts every document regardless of state.
	Force bool
	// Progress, when set, is called after each document finishes.
	Progress func(DocumentResult)
}

// DocumentResult describes one document in a pass.
type DocumentResult struct {
	Source      string
	Dest        string
	Nodes       int
	Subnodes    int
	Connections int
	Skipped     bool
	Err         error
}

// SyncResult represents the result of a sync operation
type SyncResult struct {
	RunID          string
	FilesScanned   int
	FilesProcessed int
	FilesSkipped   int
	Documents      []DocumentResult
	Pruned         []string
	Errors         []error
	StartTime      time.Time
	EndTime        time.Time
}

// Sync performs a one-shot conversion of all changed documents. A failing
// document is recorded in the result and does not stop the others. The
// returned error is reserved for failures of the pass itself.
func (s *Syncer) Sync(ctx context.Context, opts Options) (*SyncResult, error) {
	result := &SyncResult{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
	s.log.SyncStarted(result.RunID, s.config.InputDir, s.config.OutputDir)

	sources, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.config.InputDir, err)
	}
	result.FilesScanned = len(sources)

	docs := make([]DocumentResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	var mu gosync.Mutex
	for i, source := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.process(source, opts)
			docs[i] = res
			if opts.Progress != nil {
				mu.Lock()
				opts.Progress(res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, d := range docs {
		result.Documents = append(result.Documents, d)
		switch {
		case d.Err != nil:
			result.Errors = append(result.Errors, d.Err)
		case d.Skipped:
			result.FilesSkipped++
		default:
			result.FilesProcessed++
		}
	}

	if !opts.DryRun {
		result.Pruned = s.state.Prune(sources)
		for _, p := range result.Pruned {
			s.log.Pruned(p)
		}
		s.state.MarkRun(time.Now())
	}

	result.EndTime = time.Now()
	s.log.SyncCompleted(result.RunID, result.FilesProcessed, result.FilesSkipped, len(result.Errors), result.Duration())
	return result, nil
}

func (s *Syncer) workers() int {
	if s.config.Workers < 1 {
		return 1
	}
	return s.config.Workers
}

func (s *Syncer) process(source string, opts Options) DocumentResult {
	res := DocumentResult{Source: source}

	dest, err := s.OutputPath(source)
	if err != nil {
		res.Err = err
		s.log.ConversionError(source, "", err)
		return res
	}
	res.Dest = dest

	if !opts.Force {
		changed, err := s.state.HasChanged(s.fs, source, dest)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", source, err)
			s.log.StateError("has-changed", res.Err)
			return res
		}
		if !changed {
			res.Skipped = true
			s.log.Skipped(source, "unchanged")
			return res
		}
	}

	doc, data, err := s.ConvertFile(source)
	if err != nil {
		res.Err = err
		s.log.ConversionError(source, dest, err)
		return res
	}
	res.Nodes = len(doc.Nodes)
	res.Subnodes = len(doc.Subnodes)
	res.Connections = len(doc.Connections)

	if opts.DryRun {
		return res
	}

	if err := s.writer.Write(dest, data); err != nil {
		res.Err = fmt.Errorf("%s: %w", source, err)
		s.log.ConversionError(source, dest, err)
		return res
	}
	if err := s.state.Update(s.fs, source, dest); err != nil {
		s.log.StateError("update", err)
	}

	s.log.DocumentConverted(source, dest, res.Nodes, res.Subnodes, res.Connections)
	return res
}

// ConvertFile parses, converts and encodes a single document without
// writing anything.
func (s *Syncer) ConvertFile(source string) (*convert.Document, []byte, error) {
	f, err := s.fs.Open(source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	raw, err := parser.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	doc := convert.Convert(raw)
	data, err := output.Encode(doc, s.format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}
	return doc, data, nil
}

// OutputPath returns where source is written.
func (s *Syncer) OutputPath(source string) (string, error) {
	return output.Path(s.config.InputDir, s.config.OutputDir, source, s.format)
}

// Scan lists the documents under the input directory, sorted, honoring
// the exclude patterns. The output directory is never scanned.
func (s *Syncer) Scan() ([]string, error) {
	root := s.config.InputDir
	var files []string

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && (path == s.config.OutputDir || s.excluded(root, path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != DocumentExt || s.excluded(root, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// excluded matches each pattern against both the path relative to root
// and its base name.
func (s *Syncer) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	base := filepath.Base(path)
	for _, p := range s.config.ExcludePatterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Duration returns how long the pass took.
func (r *SyncResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// String returns a human-readable summary of the sync result
func (r *SyncResult) String() string {
	return fmt.Sprintf(
		"Sync complete: %d files converted, %d unchanged, %d errors (took %v)",
		r.FilesProcessed,
		r.FilesSkipped,
		len(r.Errors),
		r.Duration().Round(time.Millisecond),
	)
}
