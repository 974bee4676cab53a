// Package watcher reports changes to the graph document on disk so the
// viewer can reload it.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
)

// DefaultPollInterval is the stat interval when polling.
const DefaultPollInterval = 2 * time.Second

var (
	ErrRemoved        = errors.New("watched document was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollEvery = d }
}

// WithPolling forces polling even when fsnotify works.
func WithPolling(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnChange registers a callback run for each reported change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError registers a callback for watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

type fileState struct {
	mtime time.Time
	size  int64
	ok    bool
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size(), ok: true}, nil
}

// Watcher reports content changes of one file. It watches the parent
// directory so editors that save by rename are seen, and falls back to
// polling when fsnotify is unavailable or HG_FORCE_POLL is set.
type Watcher struct {
	path      string
	debounce  time.Duration
	pollEvery time.Duration
	forcePoll bool
	onChange  func()
	onError   func(error)
	changes   chan struct{}

	mu        sync.Mutex
	started   bool
	polling   bool
	fsType    FilesystemType
	last      fileState
	cancel    context.CancelFunc
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	wg        sync.WaitGroup
}

// New creates a watcher for the document at path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:      abs,
		debounce:  DefaultDebounceDuration,
		pollEvery: DefaultPollInterval,
		onChange:  func() {},
		onError:   func(error) {},
		changes:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollEvery <= 0 {
		w.pollEvery = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	st, err := stat(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}
	w.last = st

	ctx, w.cancel = context.WithCancel(ctx)
	w.fsType = DetectFilesystemType(filepath.Dir(w.path))
	w.polling = w.forcePoll || envBool("HG_FORCE_POLL") || w.fsType.Remote()
	if !w.polling {
		if fsw, err := w.watchDir(); err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsw = fsw
		}
	}

	w.wg.Add(1)
	if w.polling {
		go w.poll(ctx)
	} else {
		go w.listen(ctx, w.fsw)
	}
	w.started = true
	return nil
}

func (w *Watcher) watchDir() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop ends watching and waits for the watch goroutine. Changes stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.mu.Unlock()

	w.wg.Wait()
}

// Changes receives after each reported change. Sends never block; changes
// made while the previous one is unread are merged.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsType
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// Polling reports whether the watcher fell back to polling.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Started reports whether the watcher is running.
func (w *Watcher) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *Watcher) listen(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			debug.Log("watcher: %s %s", ev.Op, ev.Name)
			if ev.Has(fsnotify.Remove) {
				// A rename-over save shows up as remove then create.
				w.debouncer.Trigger(w.check)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.check)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares the file with the last seen state and reports a change or
// a removal.
func (w *Watcher) check() {
	st, err := stat(w.path)

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	prev := w.last
	w.last = st
	w.mu.Unlock()

	switch {
	case err != nil && os.IsNotExist(err):
		if prev.ok {
			w.onError(ErrRemoved)
		}
	case err != nil && os.IsPermission(err):
		w.onError(ErrPermission)
	case err != nil:
		w.onError(err)
	case !prev.ok || !st.mtime.Equal(prev.mtime) || st.size != prev.size:
		w.onChange()
		select {
		case w.changes <- struct{}{}:
		default:
		}
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
