// Package mock intercepts the persistence operations of a client-side data
// layer and answers them from registered routes instead of a backend.
//
// A Server resolves each operation to a route by path pattern and method,
// runs the route handler (optionally after an emulated latency) and
// delivers the result through a transport, usually a Promise. Operations
// that match no route are passed to the native sync function unchanged.
//
// # Server
//
// Create a server around the native sync function and register routes:
//
//	srv := mock.New(native)
//	srv.Get("/books/:id", func(c *mock.Context, p mock.Params) mock.Result {
//		return mock.OK(map[string]any{"id": p.Get(0)})
//	})
//
// Server.Sync has the signature of the native function, so the server can
// be installed wherever the native function was used.
//
// # Patterns
//
// Route templates support named segments, splats and optional parts:
//
//	"/books/:id"          one segment
//	"/files/*path"        any number of segments
//	"/books(/:id)"        optional part
//
// Raw regular expressions are accepted as well; each capture group yields
// one positional param.
//
// # Precedence
//
// Routes are scanned newest first. A route registered for the exact method
// wins immediately. Routes registered for AnyMethod only match when no
// exact-method route does; among them the newest wins.
//
// # Results
//
// Handlers return a Result built with OK or Fail. LegacyHandler covers the
// loosely typed form where a string return value is a failure reason.
package mock
