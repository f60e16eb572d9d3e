package mock

import "context"

// EventRequest is the event an entity receives when a mocked request
// starts. Its arguments are the entity, the transport promise and the
// options.
const EventRequest = "request"

// Entity is the contract a client model or collection fulfils.
type Entity interface {
	// URL returns the resolved path of the entity.
	URL() string
	// JSON returns the full serialized state.
	JSON() any
	// Trigger emits a lifecycle event.
	Trigger(event string, args ...any)
}

// Patcher is implemented by entities that can serialize the subset of
// attributes changed since the last sync. It is consulted for patch
// operations when Options.Attrs is nil.
type Patcher interface {
	ChangedJSON() any
}

// SyncFunc performs a persistence operation. Server.Sync is a SyncFunc, so
// a Server can stand in wherever the native implementation is used.
type SyncFunc func(ctx context.Context, op Op, entity Entity, opts *Options) (any, error)

// Options are the per-call options of a sync.
type Options struct {
	// URL overrides the entity URL.
	URL string

	// Data overrides the payload computed from the entity.
	Data any

	// Attrs holds the changed attributes sent by a patch operation.
	Attrs any

	// EmulateHTTP overrides the server-wide emulation setting when set.
	EmulateHTTP *bool

	// RecoverDelayed turns a panic of a handler run after a latency into a
	// failure with a "500" reason. Handlers run without latency always
	// panic on the caller's goroutine.
	RecoverDelayed bool

	// Success is invoked with the handler value on success.
	Success func(value any)

	// Error is invoked with the failure reason on failure.
	Error func(reason string)
}

// Bool returns a pointer to v, for Options.EmulateHTTP.
func Bool(v bool) *bool {
	return &v
}

// Context describes a single dispatched operation. It is created for each
// Sync call and handed to the handler.
type Context struct {
	// ID identifies the operation.
	ID string

	// Op is the requested operation.
	Op Op

	// URL is the path the route was resolved against.
	URL string

	// Method is the effective verb. With HTTP emulation every verb but GET
	// becomes POST.
	Method string

	// MethodOverride carries the true verb when emulation replaced it,
	// like an X-HTTP-Method-Override header. Empty otherwise.
	MethodOverride string

	// Data is the payload sent with the operation, if any.
	Data any

	// Route is the matched route. It is nil when the default handler runs.
	Route *Route

	// Params are the captures of the matched route.
	Params Params

	// Entity is the synced model or collection. It may be nil.
	Entity Entity

	ctx context.Context
}

// Context returns the context.Context the operation was issued with.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// TrueMethod returns the verb the client asked for, ignoring emulation.
func (c *Context) TrueMethod() string {
	if c.MethodOverride != "" {
		return c.MethodOverride
	}
	return c.Method
}

type idKey struct{}

// ContextWithID returns a copy of ctx carrying an operation ID. Sync uses
// it instead of generating one.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the operation ID stored by ContextWithID.
func IDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(idKey{}).(string); ok {
		return id
	}
	return ""
}
