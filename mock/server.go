package mock

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vitalvas/faux/mock"

// Server intercepts persistence operations and dispatches them to routes.
// Operations matching no route go to the native sync function given to New.
//
// A Server is safe for concurrent use. Configuration changes apply to the
// operations issued after them.
type Server struct {
	native SyncFunc
	routes *Table

	mu           sync.RWMutex
	enabled      bool
	emulateHTTP  bool
	defaultRoute *Route
	latency      LatencyFunc
	newTransport TransportFactory

	logger   zerolog.Logger
	tracer   trace.Tracer
	observer Observer
	newID    func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTracer sets the tracer used to record one span per dispatched
// operation. Defaults to the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithObserver sets an observer notified about every operation.
func WithObserver(o Observer) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// WithIDGenerator sets the generator of operation IDs. Defaults to
// random UUIDs.
func WithIDGenerator(f func() string) Option {
	return func(s *Server) {
		s.newID = f
	}
}

// WithTransportFactory sets the initial transport factory.
func WithTransportFactory(f TransportFactory) Option {
	return func(s *Server) {
		s.newTransport = f
	}
}

// WithEmulateHTTP sets the initial emulation setting.
func WithEmulateHTTP(v bool) Option {
	return func(s *Server) {
		s.emulateHTTP = v
	}
}

// New returns an enabled Server with an empty route table. The native
// function receives every operation the server does not handle; it may be
// nil, in which case such operations fail with ErrNoNativeSync.
func New(native SyncFunc, opts ...Option) *Server {
	s := &Server{
		native:       native,
		routes:       NewTable(),
		enabled:      true,
		newTransport: DeferredTransport,
		logger:       zerolog.Nop(),
		observer:     nopObserver{},
		newID:        uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.newTransport == nil {
		s.newTransport = DeferredTransport
	}

	return s
}

// settings is a snapshot of the mutable configuration taken per operation.
type settings struct {
	enabled      bool
	emulateHTTP  bool
	defaultRoute *Route
	latency      LatencyFunc
	newTransport TransportFactory
}

func (s *Server) snapshot() settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return settings{
		enabled:      s.enabled,
		emulateHTTP:  s.emulateHTTP,
		defaultRoute: s.defaultRoute,
		latency:      s.latency,
		newTransport: s.newTransport,
	}
}

// Sync performs a persistence operation against the routes.
//
// When a route matches, Sync returns the transport promise at once (a
// *Promise with the default transport) and the handler runs either
// immediately or after the configured latency. Handler failures are
// delivered through the transport, never as the returned error. The
// returned error only reports misconfiguration, such as a missing URL.
//
// When the server is disabled, or no route matches and there is no
// default handler, Sync returns the result of the native function.
func (s *Server) Sync(ctx context.Context, op Op, entity Entity, opts *Options) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &Options{}
	}

	cfg := s.snapshot()

	if !cfg.enabled {
		return s.fallback(ctx, op, entity, opts, opts.URL)
	}

	method, override, ok := cfg.methods(op, opts)
	if !ok {
		return nil, &ArgumentError{Op: "sync", Err: ErrUnknownOp}
	}

	c := &Context{
		Op:             op,
		Method:         method,
		MethodOverride: override,
		Entity:         entity,
		ctx:            ctx,
	}

	c.URL = opts.URL
	if c.URL == "" && entity != nil {
		c.URL = entity.URL()
	}
	if c.URL == "" {
		return nil, &ArgumentError{Op: "sync", Err: ErrMissingURL}
	}

	match, found := s.routes.Match(c.URL, c.Method)
	var handler Handler
	switch {
	case found:
		route := match.Route
		c.Route = &route
		c.Params = match.Params
		handler = route.Handler
	case cfg.defaultRoute != nil:
		handler = cfg.defaultRoute.Handler
		c.Params = Params{}
	default:
		return s.fallback(ctx, op, entity, opts, c.URL)
	}

	c.Data = requestData(c.TrueMethod(), entity, opts)

	c.ID = IDFromContext(ctx)
	if c.ID == "" {
		c.ID = s.newID()
	}

	transport := cfg.newTransport(opts, c)
	promise := transport.Promise()

	var delay time.Duration
	if cfg.latency != nil {
		delay = cfg.latency(c)
	}

	s.logDispatch(c, delay)

	ctx, span := s.tracer.Start(ctx, "mock.Sync",
		trace.WithAttributes(
			attribute.String("mock.id", c.ID),
			attribute.String("mock.op", string(op)),
			attribute.String("mock.method", c.Method),
			attribute.String("mock.url", c.URL),
			attribute.String("mock.route", routeName(c.Route)),
		),
	)
	c.ctx = ctx

	if entity != nil {
		entity.Trigger(EventRequest, entity, promise, opts)
	}

	started := time.Now()
	exec := func(recoverPanic bool) {
		defer span.End()

		if recoverPanic {
			defer func() {
				if v := recover(); v != nil {
					reason := fmt.Sprintf("500 handler panic: %v", v)
					span.SetStatus(codes.Error, reason)
					s.logger.Error().Str("id", c.ID).Interface("panic", v).Msg("mock: delayed handler panic")
					transport.Reject(reason)
				}
			}()
		}

		res := handler(c, c.Params)
		s.observer.ObserveDispatch(c, res, time.Since(started))

		if res.Failed() {
			span.SetStatus(codes.Error, res.Reason)
			s.logger.Debug().Str("id", c.ID).Str("reason", res.Reason).Msg("mock: handler failed")
			transport.Reject(res.Reason)
			return
		}
		transport.Resolve(res.Value)
	}

	if delay <= 0 {
		exec(false)
	} else {
		recoverPanic := opts.RecoverDelayed
		time.AfterFunc(delay, func() { exec(recoverPanic) })
	}

	return promise, nil
}

// methods returns the effective method of op and, when the operation is
// emulated, the true method carried as override.
func (cfg settings) methods(op Op, opts *Options) (method, override string, ok bool) {
	method, ok = op.Method()
	if !ok {
		return "", "", false
	}

	emulate := cfg.emulateHTTP
	if opts.EmulateHTTP != nil {
		emulate = *opts.EmulateHTTP
	}
	if emulate && method != http.MethodGet {
		return http.MethodPost, method, true
	}
	return method, "", true
}

// Handles reports whether Sync would dispatch the operation to a route or
// to the default handler instead of the native sync function. It runs no
// handler.
func (s *Server) Handles(op Op, url string, opts *Options) bool {
	if opts == nil {
		opts = &Options{}
	}

	cfg := s.snapshot()
	if !cfg.enabled || url == "" {
		return false
	}

	method, _, ok := cfg.methods(op, opts)
	if !ok {
		return false
	}

	if _, found := s.routes.Match(url, method); found {
		return true
	}
	return cfg.defaultRoute != nil
}

// fallback hands an operation to the native sync function unchanged.
func (s *Server) fallback(ctx context.Context, op Op, entity Entity, opts *Options, url string) (any, error) {
	if url == "" && entity != nil {
		url = entity.URL()
	}

	s.logger.Debug().Str("op", string(op)).Str("url", url).Msg("mock: native sync")
	s.observer.ObserveFallback(op, url)

	if s.native == nil {
		return nil, ErrNoNativeSync
	}
	return s.native(ctx, op, entity, opts)
}

func (s *Server) logDispatch(c *Context, delay time.Duration) {
	e := s.logger.Debug()
	if !e.Enabled() {
		return
	}

	e.Str("id", c.ID).
		Str("op", string(c.Op)).
		Str("method", c.Method).
		Str("url", c.URL)
	if c.MethodOverride != "" {
		e.Str("override", c.MethodOverride)
	}
	if c.Route != nil {
		e.Str("route", c.Route.Name)
	} else {
		e.Bool("default", true)
	}
	if delay > 0 {
		e.Dur("latency", delay)
	}
	e.Msg("mock: dispatch")
}

func routeName(r *Route) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// requestData computes the payload of an operation. An explicit Data
// option always wins. Otherwise patch sends the changed attributes when
// known, create and update send the full entity state and the other verbs
// send nothing.
func requestData(method string, entity Entity, opts *Options) any {
	if opts.Data != nil {
		return opts.Data
	}
	if entity == nil {
		return nil
	}

	switch method {
	case http.MethodPatch:
		if opts.Attrs != nil {
			return opts.Attrs
		}
		if p, ok := entity.(Patcher); ok {
			if changed := p.ChangedJSON(); changed != nil {
				return changed
			}
		}
		return entity.JSON()
	case http.MethodPost, http.MethodPut:
		return entity.JSON()
	}
	return nil
}

// AddRoute registers a route. See Table.Add.
func (s *Server) AddRoute(spec RouteSpec) error {
	route, err := s.routes.Add(spec)
	if err != nil {
		return &ArgumentError{Op: "add", Err: err}
	}

	s.logger.Debug().
		Str("name", route.Name).
		Str("method", route.Method).
		Str("pattern", route.Pattern.String()).
		Msg("mock: route added")

	return nil
}

// Remove deletes the named route. Unknown names are ignored.
func (s *Server) Remove(name string) *Server {
	if s.routes.Remove(name) {
		s.logger.Debug().Str("name", name).Msg("mock: route removed")
	}
	return s
}

// RemoveAll deletes every route.
func (s *Server) RemoveAll() *Server {
	s.routes.RemoveAll()
	return s
}

// Route returns a copy of the named route.
func (s *Server) Route(name string) (Route, bool) {
	return s.routes.Get(name)
}

// RouteAt returns a copy of the route at index i in registration order.
func (s *Server) RouteAt(i int) (Route, bool) {
	return s.routes.At(i)
}

// Routes returns copies of all routes in registration order.
func (s *Server) Routes() []Route {
	return s.routes.Routes()
}

// Find resolves the route for a path and method without dispatching.
func (s *Server) Find(path, method string) (RouteMatch, bool) {
	return s.routes.Match(path, method)
}

// SetDefaultHandler sets the handler for operations matching no route.
// A nil handler restores the fallback to the native sync function.
func (s *Server) SetDefaultHandler(h Handler) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == nil {
		s.defaultRoute = nil
		return s
	}
	s.defaultRoute = &Route{Method: AnyMethod, Handler: h}
	return s
}

// SetLatency sets the emulated server latency. With hi <= 0 every handler
// is delayed by lo; otherwise the delay is drawn from [lo, hi] per
// operation. SetLatency(0, 0) runs handlers synchronously again.
func (s *Server) SetLatency(lo, hi time.Duration) *Server {
	var f LatencyFunc
	switch {
	case hi > 0:
		f = RandomLatency(lo, hi)
	case lo > 0:
		f = FixedLatency(lo)
	}
	return s.SetLatencyFunc(f)
}

// SetLatencyFunc sets a function computing the latency of each operation,
// for instance per entity. A nil function clears the latency.
func (s *Server) SetLatencyFunc(f LatencyFunc) *Server {
	s.mu.Lock()
	s.latency = f
	s.mu.Unlock()
	return s
}

// SetTransportFactory sets the transport factory. Nil restores
// DeferredTransport.
func (s *Server) SetTransportFactory(f TransportFactory) *Server {
	if f == nil {
		f = DeferredTransport
	}
	s.mu.Lock()
	s.newTransport = f
	s.mu.Unlock()
	return s
}

// SetEmulateHTTP sets whether every verb but GET is sent as POST, with the
// true verb in Context.MethodOverride. Options.EmulateHTTP takes precedence.
func (s *Server) SetEmulateHTTP(v bool) *Server {
	s.mu.Lock()
	s.emulateHTTP = v
	s.mu.Unlock()
	return s
}

// Enable enables the server, or disables it with Enable(false). A disabled
// server passes every operation to the native sync function.
func (s *Server) Enable(enable ...bool) *Server {
	v := len(enable) == 0 || enable[0]

	s.mu.Lock()
	s.enabled = v
	s.mu.Unlock()

	s.logger.Debug().Bool("enabled", v).Msg("mock: toggled")
	return s
}

// Enabled reports whether the server intercepts operations.
func (s *Server) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Version returns the library version.
func (s *Server) Version() string {
	return Version
}
