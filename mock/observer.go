package mock

import "time"

// Observer is notified about the outcome of every Sync call.
type Observer interface {
	// ObserveDispatch is called after a handler ran. Elapsed includes the
	// emulated latency.
	ObserveDispatch(c *Context, r Result, elapsed time.Duration)

	// ObserveFallback is called when an operation goes to the native sync,
	// including when the server is disabled.
	ObserveFallback(op Op, url string)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(*Context, Result, time.Duration) {}

func (nopObserver) ObserveFallback(Op, string) {}
