package mock

import (
	"context"
	"sync"
)

// Transport relays the outcome of one handler run to the caller.
type Transport interface {
	// Promise returns the value Sync hands back to the caller. It may be
	// nil.
	Promise() any
	// Resolve delivers a success value.
	Resolve(value any)
	// Reject delivers a failure reason.
	Reject(reason string)
}

// TransportFactory creates the Transport for one operation.
type TransportFactory func(opts *Options, c *Context) Transport

// Promise is the read side of a Deferred.
type Promise struct {
	done  chan struct{}
	value any
	err   error
}

// Done is closed once the operation has been resolved or rejected.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation completes or ctx is done. A rejected
// operation returns a *Failure.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the operation has completed.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Deferred is the default Transport. It invokes the Success and Error
// callbacks of the options and settles a Promise. Only the first Resolve
// or Reject has an effect.
type Deferred struct {
	once    sync.Once
	promise *Promise
	success func(any)
	failure func(string)
}

// NewDeferred returns a Deferred wired to the callbacks in opts.
func NewDeferred(opts *Options) *Deferred {
	d := &Deferred{promise: &Promise{done: make(chan struct{})}}
	if opts != nil {
		d.success = opts.Success
		d.failure = opts.Error
	}
	return d
}

// DeferredTransport is a TransportFactory returning a *Deferred. Sync then
// returns a *Promise.
func DeferredTransport(opts *Options, _ *Context) Transport {
	return NewDeferred(opts)
}

// Promise returns the *Promise of the Deferred.
func (d *Deferred) Promise() any {
	return d.promise
}

// Resolve settles the promise with value and calls the success callback.
func (d *Deferred) Resolve(value any) {
	d.once.Do(func() {
		d.promise.value = value
		if d.success != nil {
			d.success(value)
		}
		close(d.promise.done)
	})
}

// Reject settles the promise with a *Failure and calls the error callback.
func (d *Deferred) Reject(reason string) {
	d.once.Do(func() {
		d.promise.err = &Failure{Reason: reason}
		if d.failure != nil {
			d.failure(reason)
		}
		close(d.promise.done)
	})
}

// callbackTransport only forwards to the option callbacks.
type callbackTransport struct {
	success func(any)
	failure func(string)
}

// CallbackTransport is a TransportFactory whose transports have no promise:
// Sync returns nil and results are only visible through the callbacks.
func CallbackTransport(opts *Options, _ *Context) Transport {
	t := &callbackTransport{}
	if opts != nil {
		t.success = opts.Success
		t.failure = opts.Error
	}
	return t
}

func (t *callbackTransport) Promise() any { return nil }

func (t *callbackTransport) Resolve(value any) {
	if t.success != nil {
		t.success(value)
	}
}

func (t *callbackTransport) Reject(reason string) {
	if t.failure != nil {
		t.failure(reason)
	}
}
