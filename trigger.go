package settle

import "time"

// Trigger is the zero-parameter form of Debouncer, for callers where
// only the occurrence of activity matters, not a payload. Bursts of
// Debounce calls coalesce into a single invocation of the operation.
type Trigger struct {
	d *Debouncer[struct{}]
}

// NewTrigger creates a Trigger that invokes op once no Debounce call
// has arrived for wait. It accepts the same options as New.
func NewTrigger(wait time.Duration, op func(), opts ...Option) (*Trigger, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	d, err := New(wait, func([]struct{}) { op() }, opts...)
	if err != nil {
		return nil, err
	}
	return &Trigger{d: d}, nil
}

// Name returns the instance name used in log output.
func (t *Trigger) Name() string { return t.d.Name() }

// State returns the current lifecycle state.
func (t *Trigger) State() State { return t.d.State() }

// Debounce registers activity and resets the quiet-period timer.
func (t *Trigger) Debounce() { t.d.Debounce() }

// DebounceNow forces the operation to fire immediately.
func (t *Trigger) DebounceNow() { t.d.DebounceNow() }

// Start launches the worker; see Debouncer.Start.
func (t *Trigger) Start() error { return t.d.Start() }

// Stop terminates the worker; see Debouncer.Stop.
func (t *Trigger) Stop() { t.d.Stop() }
