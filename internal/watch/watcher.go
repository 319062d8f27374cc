// Package watch feeds filesystem events into a debouncer and runs the
// configured command once each burst of changes settles.
package watch

import (
	"context"
	"errors"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/settle/pkg/log"
)

// Debouncer is the slice of the settle API the watcher needs.
type Debouncer interface {
	Debounce(paths ...string)
}

// Watcher forwards filesystem change events for a set of paths to a
// debouncer. If the underlying watcher fails it is re-established with
// exponential backoff.
type Watcher struct {
	paths    []string
	debounce Debouncer
	logger   log.Logger
	backoff  *backoff
}

// NewWatcher creates a watcher over the given paths.
func NewWatcher(paths []string, debounce Debouncer, logger log.Logger) *Watcher {
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		logger:   logger,
		backoff:  newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
	}
}

// Run watches until the context is cancelled. A failed watcher is
// recreated after a backoff; the error is only returned when the
// paths cannot be watched at all (for example, they do not exist).
func (w *Watcher) Run(ctx context.Context) error {
	for {
		err := w.watch(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			w.logger.Error("watcher failed, re-establishing", log.Err(err))
		}
		if !w.backoff.Sleep(ctx) {
			return ctx.Err()
		}
	}
}

// watch runs one watcher session: create, add paths, forward events.
func (w *Watcher) watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, p := range w.paths {
		if err := fw.Add(p); err != nil {
			return err
		}
	}
	w.backoff.Reset()
	w.logger.Info("watching", log.Int("paths", len(w.paths)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("event channel closed")
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("change detected",
				log.String("path", ev.Name),
				log.String("op", ev.Op.String()),
			)
			w.debounce.Debounce(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("error channel closed")
			}
			return err
		}
	}
}

// relevant filters out chmod-only events, which editors and archive
// tools emit in volume without changing content.
func relevant(ev fsnotify.Event) bool {
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
