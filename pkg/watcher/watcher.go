// Package watcher reports changes to a single file.
//
// The parent directory is watched rather than the file itself, because
// editors commonly save by writing a temporary file and renaming it over
// the original, which drops a watch placed on the old inode. Bursts of
// events are coalesced with a [schedule.Debouncer].
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/jsontree/pkg/schedule"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches one file.
type Watcher struct {
	path      string
	fs        *fsnotify.Watcher
	debouncer *schedule.Debouncer
	logger    *log.Logger
}

// New starts watching path. A zero debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:      abs,
		fs:        fw,
		debouncer: schedule.NewDebouncer(debounce),
		logger:    logger,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange after each burst of writes, creates or renames of the
// watched file. It blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.debouncer.Cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.logger.Debug("file changed", "path", w.path, "op", ev.Op.String())
				w.debouncer.Trigger(onChange)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.debouncer.Cancel()
	return w.fs.Close()
}
