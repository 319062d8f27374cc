package settle

import (
	"sync"

	"github.com/bft-labs/settle/pkg/log"
)

// State represents the lifecycle state of a Debouncer.
type State int

const (
	// StateNew is the initial state before the worker has been started.
	StateNew State = iota

	// StateRunning means the worker is accepting and settling requests.
	StateRunning

	// StateStopped means Stop() was called. Terminal.
	StateStopped

	// StateCrashed means the operation panicked and the worker
	// terminated. Terminal.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateNew:
		return "New"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// terminal reports whether no further transitions are possible.
func (s State) terminal() bool {
	return s == StateStopped || s == StateCrashed
}

// lifecycle manages the state machine for a Debouncer.
// Valid transitions: New -> Running, New -> Stopped,
// Running -> Stopped, Running -> Crashed.
type lifecycle struct {
	mu     sync.RWMutex
	state  State
	logger log.Logger
}

func newLifecycle(logger log.Logger) *lifecycle {
	return &lifecycle{state: StateNew, logger: logger}
}

// State returns the current lifecycle state.
func (l *lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// transitionTo attempts to move to a new state, reporting whether the
// transition was applied. Terminal states reject everything.
func (l *lifecycle) transitionTo(newState State, reason string) bool {
	l.mu.Lock()
	oldState := l.state

	ok := false
	switch oldState {
	case StateNew:
		ok = newState == StateRunning || newState == StateStopped
	case StateRunning:
		ok = newState == StateStopped || newState == StateCrashed
	}
	if !ok {
		l.mu.Unlock()
		return false
	}

	l.state = newState
	l.mu.Unlock()

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
	return true
}
