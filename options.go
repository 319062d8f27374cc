package settle

import (
	"time"

	"github.com/bft-labs/settle/pkg/log"
)

// Option configures optional behavior of a Debouncer or Trigger.
type Option func(*options)

// options holds the optional configuration shared by New and NewTrigger.
type options struct {
	maxWait     time.Duration
	manualStart bool
	logger      log.Logger
	name        string
}

// defaultOptions returns options with sensible defaults: no ceiling,
// auto-start, silent logger, generated name.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithMaxWait sets a ceiling on the total time between the first
// request of a burst and the operation invocation. Without it, a
// request stream that never goes quiet delays the operation forever.
// Must be >= the wait duration.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) {
		o.maxWait = d
	}
}

// WithManualStart disables the default auto-start. The worker will not
// run until Start() is called; requests made before then accumulate.
func WithManualStart() Option {
	return func(o *options) {
		o.manualStart = true
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the instance name used in log output.
// If not provided, a unique name is generated.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
