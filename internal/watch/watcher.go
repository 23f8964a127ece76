// Package watch reports edits to a project file on disk.
package watch

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/project"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // file written or replaced
	ChangeRemoved                    // file deleted or renamed away
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	}
	return "unknown"
}

// Change is one debounced edit of the watched file. On ChangeModified the
// file has been re-read: Project holds the parsed content, or Err the
// reason it could not be parsed.
type Change struct {
	Kind    ChangeKind
	File    string
	Project *project.File
	Err     error
}

// Watcher monitors a single project file. It watches the parent directory so
// that editors and tools that save by renaming a temp file are still seen.
type Watcher struct {
	File     string
	Changes  <-chan Change
	Debounce time.Duration

	changes chan Change
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	started bool
	stopped bool
}

// ErrStopped is returned by Start once the watcher has been stopped.
var ErrStopped = errors.New("watcher stopped")

// NewWatcher creates a watcher for the project file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		File:     abs,
		Changes:  ch,
		Debounce: DefaultDebounce,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. If the parent directory cannot be watched the
// underlying fsnotify watcher is released before the error is returned.
// Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.stopped:
		return ErrStopped
	case w.started:
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		w.watcher.Close()
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. It is safe to call more
// than once, and before or without a successful Start.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.stopped = true
		started := w.started
		w.mu.Unlock()

		close(w.stop)
		w.watcher.Close()
		if started {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending bool
		last    time.Time
	)
	ticker := time.NewTicker(w.Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending, last = true, time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.Debounce {
				pending = false
				w.emit()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Get().WithError(err).WithField("file", w.File).Warn("watch error")
		}
	}
}

func (w *Watcher) emit() {
	c := Change{Kind: ChangeModified, File: w.File}
	f, err := project.Load(w.File)
	switch {
	case err == nil:
		c.Project = f
	case errors.Is(err, project.ErrNoFile):
		c.Kind = ChangeRemoved
	default:
		c.Err = err
	}

	select {
	case w.changes <- c:
	case <-w.stop:
	}
}
