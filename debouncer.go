package settle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/settle/pkg/log"
)

// Debouncer coalesces bursts of Debounce calls into a single operation
// invocation over the accumulated parameters, in the order they were
// applied. It is safe for any number of concurrent callers.
//
// Use New to create a Debouncer; the zero value is not usable.
type Debouncer[T any] struct {
	engine *engine[T]
	lc     *lifecycle
	logger log.Logger
	name   string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Debouncer that invokes op with the accumulated
// parameters once no Debounce call has arrived for wait.
//
// Unless WithManualStart is given, the worker starts immediately.
// Returns an error if wait is not positive, if a configured max wait
// is below wait, or if op is nil.
func New[T any](wait time.Duration, op func([]T), opts ...Option) (*Debouncer[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if wait <= 0 {
		return nil, ErrNonPositiveWait
	}
	if o.maxWait != 0 && o.maxWait < wait {
		return nil, ErrMaxWaitTooSmall
	}
	if op == nil {
		return nil, ErrNilOperation
	}

	name := o.name
	if name == "" {
		name = "settle-" + uuid.NewString()[:8]
	}

	d := &Debouncer[T]{
		engine: newEngine(wait, o.maxWait, op, o.logger, name),
		lc:     newLifecycle(o.logger),
		logger: o.logger,
		name:   name,
	}

	if !o.manualStart {
		if err := d.Start(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Name returns the instance name used in log output.
func (d *Debouncer[T]) Name() string {
	return d.name
}

// State returns the current lifecycle state.
func (d *Debouncer[T]) State() State {
	return d.lc.State()
}

// Debounce registers activity and schedules the operation to run once
// the stream has been quiet for the configured wait. Any params are
// appended to the pending batch; a call without params contributes no
// element but still resets the timer.
func (d *Debouncer[T]) Debounce(params ...T) {
	d.engine.request(false, params)
}

// DebounceNow is like Debounce but bypasses both the wait and the max
// wait: the operation fires as soon as the worker observes the
// request, with everything accumulated so far plus params.
func (d *Debouncer[T]) DebounceNow(params ...T) {
	d.engine.request(true, params)
}

// Start launches the worker. It is a no-op if the worker is already
// running and returns ErrStopped once the debouncer has been stopped
// or has crashed.
func (d *Debouncer[T]) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.lc.State() {
	case StateRunning:
		return nil
	case StateStopped, StateCrashed:
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})

	d.lc.transitionTo(StateRunning, "Start() called")

	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("operation panicked, worker terminated",
					log.String("debouncer", d.name),
					log.Any("panic", r),
				)
				d.lc.transitionTo(StateCrashed, "operation panic")
			}
		}()
		d.engine.run(ctx)
	}()

	return nil
}

// Stop terminates the worker and discards any pending batch without
// invoking the operation. Callers that need a final flush must call
// DebounceNow first. Stop is idempotent; a stopped debouncer cannot
// be restarted.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.lc.State() {
	case StateNew:
		d.lc.transitionTo(StateStopped, "Stop() before Start()")
		return
	case StateStopped, StateCrashed:
		return
	}

	d.cancel()
	<-d.done
	d.lc.transitionTo(StateStopped, "Stop() called")
}
