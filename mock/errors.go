package mock

import "errors"

// Configuration errors. They are always caller bugs and are reported
// synchronously, wrapped in an *ArgumentError.
var (
	// ErrMissingPattern is returned when a route is registered without a
	// path pattern.
	ErrMissingPattern = errors.New("missing mandatory pattern argument")

	// ErrInvalidPattern is returned when a pattern has an unsupported type
	// or a template fails to compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidMethod is returned when a route method is neither a
	// canonical verb nor AnyMethod.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrMissingURL is returned by Sync when neither the options nor the
	// entity provide a URL.
	ErrMissingURL = errors.New("undefined url for entity")

	// ErrUnknownOp is returned by Sync for an operation other than create,
	// read, update, delete or patch.
	ErrUnknownOp = errors.New("unknown operation")
)

// ErrNoNativeSync is returned by Sync when an operation has to fall back to
// the native sync function but the Server was created without one.
var ErrNoNativeSync = errors.New("mock: no native sync configured")

// ArgumentError reports a misconfigured call. Op names the method that
// rejected its arguments.
type ArgumentError struct {
	Op  string
	Err error
}

func (e *ArgumentError) Error() string {
	return "mock: " + e.Op + ": " + e.Err.Error()
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Failure is the error delivered through a Promise when a handler signals
// failure. Reason is the handler's failure reason, unchanged.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string {
	return f.Reason
}
