package mock

// Result is the outcome of a handler: either a success value, possibly nil,
// or a failure reason.
type Result struct {
	Value  any
	Reason string
	failed bool
}

// OK returns a successful result carrying v.
func OK(v any) Result {
	return Result{Value: v}
}

// Fail returns a failed result with the given reason.
func Fail(reason string) Result {
	return Result{Reason: reason, failed: true}
}

// ResultOf converts a loosely typed handler return value. A string is a
// failure reason; anything else, nil included, is a success value.
func ResultOf(v any) Result {
	if s, ok := v.(string); ok {
		return Fail(s)
	}
	return OK(v)
}

// Failed reports whether the result is a failure.
func (r Result) Failed() bool {
	return r.failed
}

// Handler handles a matched operation. The params are the captures of the
// route pattern in order.
type Handler func(c *Context, params Params) Result

// LegacyHandler is the loosely typed handler shape: captured values are
// passed positionally and a string return value signals failure.
type LegacyHandler func(c *Context, params ...string) any

// Legacy adapts a LegacyHandler to a Handler.
func Legacy(h LegacyHandler) Handler {
	return func(c *Context, params Params) Result {
		return ResultOf(h(c, params.Strings()...))
	}
}

// noopHandler is used for routes registered without a handler.
func noopHandler(_ *Context, _ Params) Result {
	return OK(nil)
}

// asHandler reports whether v is a handler value and converts it. A typed
// nil function is still a handler; it is replaced by a no-op on
// registration.
func asHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case Handler:
		return h, true
	case func(*Context, Params) Result:
		return Handler(h), true
	case LegacyHandler:
		if h == nil {
			return nil, true
		}
		return Legacy(h), true
	case func(*Context, ...string) any:
		if h == nil {
			return nil, true
		}
		return Legacy(h), true
	}
	return nil, false
}
