// Package settle coalesces bursts of requests into a single batched
// operation.
//
// A Debouncer accumulates parameters from any number of concurrent
// callers and invokes its operation exactly once after the request
// stream has been quiet for the configured wait. An optional ceiling
// bounds the total latency between the first request of a burst and
// the eventual invocation, so a stream that never goes quiet still
// makes progress.
//
// Example usage:
//
//	d, err := settle.New(250*time.Millisecond, func(paths []string) {
//	    rebuild(paths)
//	}, settle.WithMaxWait(1500*time.Millisecond))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop()
//
//	d.Debounce("a.go")
//	d.Debounce("b.go")
//	// one rebuild([]string{"a.go", "b.go"}) 250ms after the last call
//
// When only the occurrence of a trigger matters, use Trigger, which
// carries no payload:
//
//	t, _ := settle.NewTrigger(time.Second, reloadConfig)
//	t.Debounce()
package settle
