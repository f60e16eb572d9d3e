// Package mockhttp exposes a mock.Server over net/http.
//
// Transport is an http.RoundTripper that answers outgoing requests from the
// routes of a mock.Server and passes unmatched requests to a base
// transport. Handler serves the same routes to real clients, together with
// a small admin API.
//
// A request maps to an operation by its method: POST is create, GET is
// read, PUT is update, DELETE is delete and PATCH is patch. A POST carrying
// an override header (X-HTTP-Method-Override and friends) is dispatched as
// an emulated request, so route handlers observe the same Method and
// MethodOverride values a client using verb emulation would produce.
//
// Handler results are written as JSON. A nil success value yields 204 No
// Content. A failure reason starting with an HTTP status code, such as
// "404" or "409 conflict", selects that status; any other reason yields
// 500.
//
// Servers used with this package should be created with Passthrough as
// their native sync function:
//
//	srv := mock.New(mockhttp.Passthrough)
//	client := &http.Client{Transport: mockhttp.NewTransport(srv, mockhttp.TransportConfig{})}
package mockhttp
