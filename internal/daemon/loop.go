package daemon

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gerunddev/mindflat/internal/logger"
	"github.com/gerunddev/mindflat/internal/sync"
)

// DefaultDebounce is how long the loop waits after the last filesystem
// event before starting a pass.
const DefaultDebounce = 500 * time.Millisecond

// Syncer runs a single conversion pass.
type Syncer interface {
	Sync(ctx context.Context, opts sync.Options) (*sync.SyncResult, error)
}

// Loop re-runs conversion on a ticker, and on filesystem changes when
// WatchDir is set.
type Loop struct {
	Syncer   Syncer
	Interval time.Duration
	// WatchDir enables fsnotify-triggered passes for the tree under it.
	WatchDir string
	Debounce time.Duration
	// Save persists state after every pass.
	Save func() error
	Log  *logger.Logger
	// OnPass is called after every pass, successful or not.
	OnPass func(*sync.SyncResult, error)
}

// Run does an initial pass, then loops until ctx is cancelled. State is
// saved once more on the way out.
func (l *Loop) Run(ctx context.Context) error {
	log := l.Log
	if log == nil {
		log = logger.Discard()
	}

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	var trigger <-chan struct{}
	if l.WatchDir != "" {
		w, err := newWatcher(l.WatchDir, l.debounce(), log)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.run(ctx)
		trigger = w.trigger
	}

	l.pass(ctx, log, "initial")

	for {
		select {
		case <-ticker.C:
			l.pass(ctx, log, "tick")
		case <-trigger:
			l.pass(ctx, log, "watch")
		case <-ctx.Done():
			log.Info("sync loop stopping")
			l.save(log)
			return nil
		}
	}
}

func (l *Loop) debounce() time.Duration {
	if l.Debounce <= 0 {
		return DefaultDebounce
	}
	return l.Debounce
}

func (l *Loop) pass(ctx context.Context, log *logger.Logger, reason string) {
	result, err := l.Syncer.Sync(ctx, sync.Options{})
	if err != nil {
		if ctx.Err() == nil {
			log.Error("sync failed", "reason", reason, "error", err)
		}
	} else {
		log.Debug("sync pass completed",
			"reason", reason,
			"files_synced", result.FilesProcessed,
			"errors", len(result.Errors))
		l.save(log)
	}

	if l.OnPass != nil {
		l.OnPass(result, err)
	}
}

func (l *Loop) save(log *logger.Logger) {
	if l.Save == nil {
		return
	}
	if err := l.Save(); err != nil {
		log.StateError("save", err)
	}
}

// watcher turns fsnotify events under a directory tree into debounced
// triggers.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *logger.Logger
	trigger  chan struct{}
}

func newWatcher(root string, debounce time.Duration, log *logger.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		fs:       fw,
		debounce: debounce,
		log:      log,
		trigger:  make(chan struct{}, 1),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches root and every directory below it; fsnotify is not
// recursive.
func (w *watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

func (w *watcher) run(ctx context.Context) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WatchEvent(event.Name, event.Op.String())

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("failed to watch directory", "path", event.Name, "error", err)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.trigger <- struct{}{}:
			default:
				// a pass is already pending
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error("file watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
