package settle_test

import (
	"fmt"
	"time"

	"github.com/bft-labs/settle"
)

func ExampleDebouncer_DebounceNow() {
	done := make(chan struct{})
	d, err := settle.New(time.Hour, func(batch []string) {
		fmt.Println(batch)
		close(done)
	})
	if err != nil {
		panic(err)
	}

	d.Debounce("a")
	d.Debounce("b")
	d.DebounceNow("c")

	<-done
	d.Stop()
	// Output: [a b c]
}

func ExampleNewTrigger() {
	done := make(chan struct{})
	tr, err := settle.NewTrigger(time.Hour, func() {
		fmt.Println("settled")
		close(done)
	})
	if err != nil {
		panic(err)
	}

	tr.Debounce()
	tr.Debounce()
	tr.DebounceNow()

	<-done
	tr.Stop()
	// Output: settled
}
