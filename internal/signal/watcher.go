// Package signal provides file-based run control.
// A stop file under .mentorra/signals lets anyone with filesystem access
// cancel an in-flight advisory run without owning the process handle.
package signal

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StopFile is the signal file name that requests cancellation.
const StopFile = "stop"

// Watcher monitors the .mentorra/signals directory for a stop request.
type Watcher struct {
	mentorraDir string

	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher rooted at baseDir, creating .mentorra/signals if
// needed. When the fsnotify watcher cannot start, the Watcher still works
// through the stat fallback in ShouldStop.
func New(baseDir string) (*Watcher, error) {
	mentorraDir := filepath.Join(baseDir, ".mentorra")
	signalsDir := filepath.Join(mentorraDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		mentorraDir: mentorraDir,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher - will use polling fallback
		return w, nil
	}
	if err := fsw.Add(signalsDir); err != nil {
		fsw.Close()
		return w, nil
	}
	w.watcher = fsw

	go w.watchSignals()

	return w, nil
}

// watchSignals monitors the signals directory for the stop file.
func (w *Watcher) watchSignals() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == StopFile &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.signalStop()
			}
		case <-w.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

func (w *Watcher) signalStop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
}

// ShouldStop returns true if a stop has been requested.
// It also checks the file directly in case the watcher missed the event.
func (w *Watcher) ShouldStop() bool {
	if _, err := os.Stat(w.stopPath()); err == nil {
		w.signalStop()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stopped
}

// Chan returns a channel that closes when a stop is requested. Callers
// select on it alongside their context.
func (w *Watcher) Chan() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stopCh
}

// RequestStop creates the stop signal file.
func (w *Watcher) RequestStop() error {
	return os.WriteFile(w.stopPath(), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// ClearStop removes the stop file and re-arms the watcher for the next run.
func (w *Watcher) ClearStop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	os.Remove(w.stopPath())
	if w.stopped {
		w.stopped = false
		w.stopCh = make(chan struct{})
	}
}

// Dir returns the path to the .mentorra directory.
func (w *Watcher) Dir() string {
	return w.mentorraDir
}

func (w *Watcher) stopPath() string {
	return filepath.Join(w.mentorraDir, "signals", StopFile)
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
