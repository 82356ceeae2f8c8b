// Package planwatch watches a plan document on disk and reports rewrites.
// Agents in plan mode write their plan to a markdown file before asking for
// approval; watching that file lets a supervisor re-read the plan the moment
// it changes instead of re-polling terminal output for it.
package planwatch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/agentwatch/internal/logging"
)

// debounceWindow coalesces the burst of write events an editor or agent
// produces for a single logical save.
const debounceWindow = 100 * time.Millisecond

// Watcher reports changes to one plan file.
type Watcher struct {
	path     string
	onChange func(path string)
	logger   *logging.Logger

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
}

// New creates a watcher for path. onChange is invoked (on the watcher's
// goroutine) after each settled change to the file.
func New(path string, onChange func(string), logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   logger,
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself, so a plan file that does not exist yet, or is replaced by
// rename, is still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fw != nil {
		return fmt.Errorf("plan watcher already started")
	}
	if w.stopped {
		return fmt.Errorf("plan watcher already stopped")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fw = fw
	w.done = make(chan struct{})
	go w.run(fw, w.done)

	w.logger.Info("plan watcher started", "path", w.path)
	return nil
}

// Stop halts watching. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	if w.fw != nil {
		close(w.done)
		w.fw.Close()
		w.fw = nil
	}
}

// Path returns the watched plan file path.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) run(fw *fsnotify.Watcher, done chan struct{}) {
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-done:
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceWindow)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			w.logger.Debug("plan file changed", "path", w.path)
			if w.onChange != nil {
				w.onChange(w.path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("plan watcher error", "error", err.Error())
		}
	}
}
