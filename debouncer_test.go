package settle

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

// capture records operation invocations for inspection.
type capture[T any] struct {
	mu      sync.Mutex
	batches [][]T
}

func (c *capture[T]) op(batch []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, batch)
}

func (c *capture[T]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *capture[T]) batch(i int) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[i]
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_Validation(t *testing.T) {
	op := func([]int) {}

	if _, err := New(0, op); !errors.Is(err, ErrNonPositiveWait) {
		t.Errorf("wait=0: err = %v, want ErrNonPositiveWait", err)
	}
	if _, err := New(-time.Second, op); !errors.Is(err, ErrNonPositiveWait) {
		t.Errorf("wait<0: err = %v, want ErrNonPositiveWait", err)
	}
	if _, err := New(time.Second, op, WithMaxWait(time.Millisecond)); !errors.Is(err, ErrMaxWaitTooSmall) {
		t.Errorf("maxWait<wait: err = %v, want ErrMaxWaitTooSmall", err)
	}
	if _, err := New[int](time.Second, nil); !errors.Is(err, ErrNilOperation) {
		t.Errorf("nil op: err = %v, want ErrNilOperation", err)
	}

	// maxWait == wait is allowed.
	d, err := New(time.Second, op, WithMaxWait(time.Second), WithManualStart())
	if err != nil {
		t.Fatalf("maxWait==wait: unexpected error %v", err)
	}
	d.Stop()
}

func TestDebouncer_QuiescenceFiring(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(250*time.Millisecond, c.op, WithMaxWait(1500*time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		// Calls at t=0, t=100, t=200: quiescence is reached before the
		// ceiling, so one fire at t=450 with all three parameters.
		d.Debounce(1)
		time.Sleep(100 * time.Millisecond)
		d.Debounce(2)
		time.Sleep(100 * time.Millisecond)
		d.Debounce(3)

		time.Sleep(249 * time.Millisecond)
		synctest.Wait()
		if c.count() != 0 {
			t.Fatal("operation fired before the quiet period elapsed")
		}

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}
		if got := c.batch(0); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("batch = %v, want [1 2 3]", got)
		}
	})
}

func TestDebouncer_NoArgCallResetsTimerWithoutElement(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(100*time.Millisecond, c.op)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		d.Debounce(1)
		time.Sleep(80 * time.Millisecond)
		d.Debounce() // no element, but the timer restarts
		time.Sleep(80 * time.Millisecond)
		d.Debounce(2)

		// Without the reset at t=80 the batch would have fired at t=100.
		time.Sleep(90 * time.Millisecond)
		synctest.Wait()
		if c.count() != 0 {
			t.Fatal("no-arg call did not reset the timer")
		}

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}
		if got := c.batch(0); !equalInts(got, []int{1, 2}) {
			t.Errorf("batch = %v, want [1 2]", got)
		}
	})
}

func TestDebouncer_MaxWaitCeiling(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(250*time.Millisecond, c.op, WithMaxWait(1500*time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		// A stream every 100ms never reaches 250ms of quiescence, but
		// the ceiling forces a fire 1500ms after the first call.
		for i := 0; i < 14; i++ {
			d.Debounce(i)
			time.Sleep(100 * time.Millisecond)
		}
		// Now at t=1400, last call at t=1300. A full quiet period would
		// end at t=1550; the ceiling fires at t=1500 instead.
		time.Sleep(99 * time.Millisecond)
		synctest.Wait()
		if c.count() != 0 {
			t.Fatal("operation fired before the ceiling")
		}

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}
		if got := len(c.batch(0)); got != 14 {
			t.Errorf("batch size = %d, want 14", got)
		}
	})
}

func TestDebouncer_ImmediateTrigger(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(250*time.Millisecond, c.op, WithMaxWait(1500*time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		d.Debounce(1)
		d.Debounce(2)
		d.DebounceNow(3)

		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times immediately after DebounceNow, want 1", c.count())
		}
		if got := c.batch(0); !equalInts(got, []int{1, 2, 3}) {
			t.Errorf("batch = %v, want [1 2 3]", got)
		}

		// State is reset: the next burst debounces normally.
		d.Debounce(4)
		time.Sleep(251 * time.Millisecond)
		synctest.Wait()
		if c.count() != 2 {
			t.Fatalf("operation fired %d times after second burst, want 2", c.count())
		}
		if got := c.batch(1); !equalInts(got, []int{4}) {
			t.Errorf("second batch = %v, want [4]", got)
		}
	})
}

func TestDebouncer_DebounceNowOnEmptyEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(time.Hour, c.op)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		d.DebounceNow()

		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}
		if got := len(c.batch(0)); got != 0 {
			t.Errorf("batch size = %d, want 0", got)
		}
	})
}

func TestDebouncer_UnboundedGrowthWithoutCeiling(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(100*time.Millisecond, c.op)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		// With no ceiling, a stream faster than the wait never fires
		// and the batch grows without bound. Documented behavior.
		for i := 0; i < 40; i++ {
			d.Debounce(i)
			time.Sleep(50 * time.Millisecond)
			synctest.Wait()
			if c.count() != 0 {
				t.Fatalf("operation fired during a stream faster than the wait (call %d)", i)
			}
		}

		// Once the stream stops, everything arrives in one batch.
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}
		if got := len(c.batch(0)); got != 40 {
			t.Errorf("batch size = %d, want 40", got)
		}
	})
}

func TestDebouncer_ConcurrentProducers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		const producers = 50

		var c capture[int]
		d, err := New(100*time.Millisecond, c.op)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		done := make(chan struct{}, producers)
		for i := 0; i < producers; i++ {
			go func(v int) {
				d.Debounce(v)
				done <- struct{}{}
			}(i)
		}
		for i := 0; i < producers; i++ {
			<-done
		}

		time.Sleep(101 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times, want 1", c.count())
		}

		// Insertion order is linearized by the lock, not by call site,
		// so compare as a set.
		got := c.batch(0)
		if len(got) != producers {
			t.Fatalf("batch size = %d, want %d", len(got), producers)
		}
		seen := make(map[int]bool, producers)
		for _, v := range got {
			if seen[v] {
				t.Errorf("duplicate parameter %d", v)
			}
			seen[v] = true
		}
		for i := 0; i < producers; i++ {
			if !seen[i] {
				t.Errorf("missing parameter %d", i)
			}
		}
	})
}

func TestDebouncer_TwoSeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[string]
		d, err := New(50*time.Millisecond, c.op)
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		d.Debounce("a")
		d.Debounce("b")
		time.Sleep(51 * time.Millisecond)
		synctest.Wait()

		d.Debounce("c")
		time.Sleep(51 * time.Millisecond)
		synctest.Wait()

		if c.count() != 2 {
			t.Fatalf("operation fired %d times, want 2", c.count())
		}
		if got := c.batch(0); len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("first batch = %v, want [a b]", got)
		}
		if got := c.batch(1); len(got) != 1 || got[0] != "c" {
			t.Errorf("second batch = %v, want [c]", got)
		}
	})
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(100*time.Millisecond, c.op)
		if err != nil {
			t.Fatal(err)
		}

		d.Debounce(1)
		time.Sleep(10 * time.Millisecond)
		d.Stop()

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		if c.count() != 0 {
			t.Error("pending batch fired after Stop")
		}
		if got := d.State(); got != StateStopped {
			t.Errorf("State() = %v, want Stopped", got)
		}

		// Terminal: no restart.
		if err := d.Start(); !errors.Is(err, ErrStopped) {
			t.Errorf("Start() after Stop: err = %v, want ErrStopped", err)
		}
	})
}

func TestDebouncer_ManualStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c capture[int]
		d, err := New(100*time.Millisecond, c.op, WithManualStart())
		if err != nil {
			t.Fatal(err)
		}
		defer d.Stop()

		if got := d.State(); got != StateNew {
			t.Fatalf("State() before Start = %v, want New", got)
		}

		// Requests before Start accumulate but nothing fires.
		d.Debounce(1)
		d.Debounce(2)
		time.Sleep(300 * time.Millisecond)
		synctest.Wait()
		if c.count() != 0 {
			t.Fatal("operation fired before Start")
		}

		if err := d.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		// Start is a no-op when already running.
		if err := d.Start(); err != nil {
			t.Fatalf("second Start: %v", err)
		}

		time.Sleep(101 * time.Millisecond)
		synctest.Wait()
		if c.count() != 1 {
			t.Fatalf("operation fired %d times after Start, want 1", c.count())
		}
		if got := c.batch(0); !equalInts(got, []int{1, 2}) {
			t.Errorf("batch = %v, want [1 2]", got)
		}
	})
}

func TestDebouncer_OperationPanicCrashesWorker(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		var mu sync.Mutex
		d, err := New(10*time.Millisecond, func([]int) {
			mu.Lock()
			calls++
			mu.Unlock()
			panic("boom")
		})
		if err != nil {
			t.Fatal(err)
		}

		d.Debounce(1)
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		if got := d.State(); got != StateCrashed {
			t.Fatalf("State() = %v, want Crashed", got)
		}

		// The engine is permanently unresponsive: further requests
		// never fire and the worker cannot be restarted.
		d.Debounce(2)
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		mu.Lock()
		got := calls
		mu.Unlock()
		if got != 1 {
			t.Errorf("operation ran %d times, want 1", got)
		}
		if err := d.Start(); !errors.Is(err, ErrStopped) {
			t.Errorf("Start() after crash: err = %v, want ErrStopped", err)
		}
		d.Stop()
	})
}

func TestDebouncer_Name(t *testing.T) {
	var c capture[int]

	d, err := New(time.Second, c.op, WithName("rebuild"), WithManualStart())
	if err != nil {
		t.Fatal(err)
	}
	if d.Name() != "rebuild" {
		t.Errorf("Name() = %q, want rebuild", d.Name())
	}
	d.Stop()

	d2, err := New(time.Second, c.op, WithManualStart())
	if err != nil {
		t.Fatal(err)
	}
	if d2.Name() == "" {
		t.Error("generated name is empty")
	}
	d2.Stop()
}
