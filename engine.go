package settle

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/settle/pkg/log"
)

// engine owns the shared batch state and the settle loop. Ingress
// mutates state under one mutex and latches a wake signal; the worker
// goroutine alone performs timed waits and invokes the operation, so
// invocations for one engine are strictly serialized and producers are
// never blocked by the operation.
type engine[T any] struct {
	wait    time.Duration
	maxWait time.Duration // 0 means no ceiling
	op      func([]T)
	logger  log.Logger
	name    string

	mu        sync.Mutex
	params    []T
	firstAt   time.Time // first request of the current burst
	scheduled bool      // a batch is pending and not yet fired
	immediate bool      // an immediate trigger is outstanding

	// wake holds at most one pending signal. A send that finds the
	// buffer full is dropped, so the channel behaves as a latch that
	// the worker consumes each time it re-evaluates.
	wake chan struct{}
}

func newEngine[T any](wait, maxWait time.Duration, op func([]T), logger log.Logger, name string) *engine[T] {
	return &engine[T]{
		wait:    wait,
		maxWait: maxWait,
		op:      op,
		logger:  logger,
		name:    name,
		wake:    make(chan struct{}, 1),
	}
}

// request is the ingress path. It appends params (a call with none
// still counts as activity), stamps the burst start on the first
// pending request, and wakes the worker. The lock is held only for
// O(1) work; request never waits on the operation.
func (e *engine[T]) request(immediate bool, params []T) {
	e.mu.Lock()
	e.params = append(e.params, params...)
	if !e.scheduled {
		e.scheduled = true
		e.firstAt = time.Now()
	}
	if immediate {
		e.immediate = true
	}
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// run is the worker loop. It blocks until work is signaled, settles
// the burst, fires, and goes back to idle. It returns when ctx is
// cancelled; a pending batch is discarded without firing.
func (e *engine[T]) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.discard()
			return
		case <-e.wake:
		}

		if !e.settle(ctx) {
			e.discard()
			return
		}
	}
}

// settle waits out the quiet period for the current burst and fires.
// It re-evaluates whenever new activity arrives, capping each sleep so
// that the total time since the burst began never exceeds maxWait.
// Returns false if ctx was cancelled.
func (e *engine[T]) settle(ctx context.Context) bool {
	for {
		e.mu.Lock()
		if !e.scheduled {
			// Stale wake: the signal's request was already part of a
			// fired batch. Nothing to do.
			e.mu.Unlock()
			return true
		}
		immediate := e.immediate
		wait := e.wait
		if e.maxWait > 0 {
			if budget := e.maxWait - time.Since(e.firstAt); budget < wait {
				wait = budget
			}
		}
		e.mu.Unlock()

		if immediate || wait <= 0 {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-e.wake:
			// New activity: restart the quiet period.
			timer.Stop()
			continue
		case <-timer.C:
		}

		// The quiet period elapsed, but a request may have raced the
		// timer. A latched wake means more activity: go around again.
		select {
		case <-e.wake:
			continue
		default:
		}
		break
	}

	e.fire()
	return true
}

// fire atomically snapshots and clears the pending batch, then invokes
// the operation outside the lock.
func (e *engine[T]) fire() {
	e.mu.Lock()
	batch := e.params
	elapsed := time.Since(e.firstAt)
	e.params = nil
	e.firstAt = time.Time{}
	e.scheduled = false
	e.immediate = false
	e.mu.Unlock()

	e.logger.Debug("firing batch",
		log.String("debouncer", e.name),
		log.Int("params", len(batch)),
		log.Duration("burst", elapsed),
	)

	e.op(batch)
}

// discard drops any pending batch on shutdown. Callers that need a
// flush must call DebounceNow before stopping.
func (e *engine[T]) discard() {
	e.mu.Lock()
	dropped := len(e.params)
	pending := e.scheduled
	e.params = nil
	e.firstAt = time.Time{}
	e.scheduled = false
	e.immediate = false
	e.mu.Unlock()

	if pending {
		e.logger.Debug("discarding pending batch",
			log.String("debouncer", e.name),
			log.Int("params", dropped),
		)
	}
}
