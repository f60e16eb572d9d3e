package mockhttp

import (
	"context"
	"sync/atomic"

	"github.com/vitalvas/faux/mock"
)

// Passthrough is the native sync function for servers driven over HTTP. It
// hands every operation back to the adapter, which then forwards the
// request to the base transport or answers 404.
func Passthrough(_ context.Context, _ mock.Op, _ mock.Entity, _ *mock.Options) (any, error) {
	return nil, ErrPassthrough
}

// requestEntity presents an HTTP request as a mock.Entity.
type requestEntity struct {
	url     string
	payload any

	// dispatched is set when the server emits the request event, that is
	// when a handler was selected for the operation.
	dispatched atomic.Bool
}

func (e *requestEntity) URL() string { return e.url }

func (e *requestEntity) JSON() any { return e.payload }

func (e *requestEntity) Trigger(event string, _ ...any) {
	if event == mock.EventRequest {
		e.dispatched.Store(true)
	}
}
