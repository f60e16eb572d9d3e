package mockhttp

import "errors"

var (
	// ErrPassthrough is returned by Passthrough. It tells the adapters that
	// the mock server did not handle the request.
	ErrPassthrough = errors.New("mockhttp: request not handled by mock server")

	// ErrInvalidBody is returned when a request body is not valid JSON.
	ErrInvalidBody = errors.New("mockhttp: invalid request body")
)
