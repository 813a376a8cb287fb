package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"pinboard/internal/board"
)

// EventKind says how a tracked reference changed.
type EventKind int

const (
	RefMissing EventKind = iota
	RefRestored
)

func (k EventKind) String() string {
	if k == RefMissing {
		return "missing"
	}
	return "restored"
}

// Event is emitted when a tracked reference stops or starts resolving.
type Event struct {
	Ref  board.ExternalRef
	Kind EventKind
}

// Watcher watches the directories holding tracked references and reports
// references that disappear or come back.
type Watcher struct {
	resolver Resolver
	log      *slog.Logger
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	byPath map[string][]board.ExternalRef
	exists map[board.ExternalRef]bool
	dirs   map[string]bool
}

func NewWatcher(r Resolver, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		resolver: r,
		log:      logger,
		fsw:      fsw,
		byPath:   make(map[string][]board.ExternalRef),
		exists:   make(map[board.ExternalRef]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Track starts watching ref. Tracking the same ref twice is a no-op.
func (w *Watcher) Track(ref board.ExternalRef) error {
	path := w.resolver.Path(ref)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.exists[ref]; ok {
		return nil
	}
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
		w.log.Debug("watcher: watching dir", slog.String("dir", dir))
	}
	w.byPath[path] = append(w.byPath[path], ref)
	w.exists[ref] = w.resolver.Exists(ref)
	return nil
}

// Reset stops watching every tracked ref and resolves later ones with r.
func (w *Watcher) Reset(r Resolver) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for dir := range w.dirs {
		if err := w.fsw.Remove(dir); err != nil {
			errs = append(errs, err)
		}
	}
	w.resolver = r
	w.byPath = make(map[string][]board.ExternalRef)
	w.exists = make(map[board.ExternalRef]bool)
	w.dirs = make(map[string]bool)
	return errors.Join(errs...)
}

// Missing reports whether a tracked ref was missing at the last check.
func (w *Watcher) Missing(ref board.ExternalRef) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ok, tracked := w.exists[ref]
	return tracked && !ok
}

// Run processes file events until ctx is cancelled, calling cb for every
// tracked reference whose existence flips.
func (w *Watcher) Run(ctx context.Context, cb func(Event)) error {
	defer w.fsw.Close()
	w.log.Info("watcher: started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			for _, e := range w.recheck(filepath.Clean(ev.Name)) {
				w.log.Debug("watcher: ref changed", slog.String("ref", string(e.Ref)), slog.String("kind", e.Kind.String()))
				if cb != nil {
					cb(e)
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) recheck(path string) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Event
	for _, ref := range w.byPath[path] {
		now := w.resolver.Exists(ref)
		if now == w.exists[ref] {
			continue
		}
		w.exists[ref] = now
		kind := RefMissing
		if now {
			kind = RefRestored
		}
		out = append(out, Event{Ref: ref, Kind: kind})
	}
	return out
}
