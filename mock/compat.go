package mock

import (
	"fmt"
	"net/http"
	"sort"
)

// Add registers a route from positional arguments:
//
//	Add([name], pattern, [method], [handler])
//
// Omitted optional arguments are inferred from the values given: a handler
// value (Handler, LegacyHandler or an equivalent func) is the handler, an
// upper-case verb or "*" in second position is the method, anything else
// is the pattern. Trailing nil arguments count as omitted.
//
// Add panics with an *ArgumentError when the pattern is missing or invalid.
// Use AddRoute to get an error instead.
func (s *Server) Add(args ...any) *Server {
	spec, err := specFromArgs(trimNilTail(args))
	if err == nil {
		err = s.AddRoute(spec)
	}
	if err != nil {
		panic(asArgumentError("add", err))
	}
	return s
}

// AddMany registers several routes. It accepts a map from route name to
// spec, registered in name order, or a slice of specs carrying their own
// names. Nil or empty input is a no-op. It panics like Add.
func (s *Server) AddMany(routes any) *Server {
	switch rs := routes.(type) {
	case nil:
	case []RouteSpec:
		for _, spec := range rs {
			s.mustAdd("addMany", spec)
		}
	case map[string]RouteSpec:
		names := make([]string, 0, len(rs))
		for name := range rs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := rs[name]
			spec.Name = name
			s.mustAdd("addMany", spec)
		}
	default:
		panic(&ArgumentError{Op: "addMany", Err: fmt.Errorf("%w: unsupported routes type %T", ErrInvalidPattern, routes)})
	}
	return s
}

// Post registers a POST route: Post([name], pattern, [handler]).
func (s *Server) Post(args ...any) *Server {
	return s.addVerb("post", http.MethodPost, args)
}

// Get registers a GET route: Get([name], pattern, [handler]).
func (s *Server) Get(args ...any) *Server {
	return s.addVerb("get", http.MethodGet, args)
}

// Put registers a PUT route: Put([name], pattern, [handler]).
func (s *Server) Put(args ...any) *Server {
	return s.addVerb("put", http.MethodPut, args)
}

// Patch registers a PATCH route: Patch([name], pattern, [handler]).
func (s *Server) Patch(args ...any) *Server {
	return s.addVerb("patch", http.MethodPatch, args)
}

// Delete registers a DELETE route: Delete([name], pattern, [handler]).
func (s *Server) Delete(args ...any) *Server {
	return s.addVerb("del", http.MethodDelete, args)
}

// addVerb inserts method before a trailing handler, or appends it, and
// delegates to Add.
func (s *Server) addVerb(op, method string, args []any) *Server {
	args = trimNilTail(args)
	if len(args) == 0 {
		panic(&ArgumentError{Op: op, Err: ErrMissingPattern})
	}

	full := make([]any, 0, len(args)+1)
	if _, ok := asHandler(args[len(args)-1]); ok {
		full = append(full, args[:len(args)-1]...)
		full = append(full, method, args[len(args)-1])
	} else {
		full = append(full, args...)
		full = append(full, method)
	}

	return s.Add(full...)
}

func (s *Server) mustAdd(op string, spec RouteSpec) {
	if err := s.AddRoute(spec); err != nil {
		panic(asArgumentError(op, err))
	}
}

// specFromArgs resolves the positional forms accepted by Add.
func specFromArgs(args []any) (RouteSpec, error) {
	var name, pattern, method, handler any

	switch len(args) {
	case 0:
		return RouteSpec{}, ErrMissingPattern
	case 1:
		pattern = args[0]
	case 2:
		switch {
		case isHandlerArg(args[1]):
			pattern, handler = args[0], args[1]
		case isMethodToken(args[1]):
			pattern, method = args[0], args[1]
		default:
			name, pattern = args[0], args[1]
		}
	case 3:
		if isHandlerArg(args[2]) {
			handler = args[2]
			if isMethodToken(args[1]) {
				pattern, method = args[0], args[1]
			} else {
				name, pattern = args[0], args[1]
			}
		} else {
			name, pattern, method = args[0], args[1], args[2]
		}
	case 4:
		name, pattern, method, handler = args[0], args[1], args[2], args[3]
	default:
		return RouteSpec{}, fmt.Errorf("%w: %d arguments, at most 4 expected", ErrInvalidPattern, len(args))
	}

	spec := RouteSpec{Pattern: pattern}

	if name != nil {
		s, ok := name.(string)
		if !ok {
			return RouteSpec{}, fmt.Errorf("%w: route name must be a string, got %T", ErrInvalidPattern, name)
		}
		spec.Name = s
	}

	if method != nil {
		m, ok := method.(string)
		if !ok {
			return RouteSpec{}, fmt.Errorf("%w: %T", ErrInvalidMethod, method)
		}
		spec.Method = m
	}

	if handler != nil {
		h, ok := asHandler(handler)
		if !ok {
			return RouteSpec{}, fmt.Errorf("mock: unsupported handler type %T", handler)
		}
		spec.Handler = h
	}

	return spec, nil
}

func isHandlerArg(v any) bool {
	_, ok := asHandler(v)
	return ok
}

// trimNilTail drops trailing nil arguments.
func trimNilTail(args []any) []any {
	n := len(args)
	for n > 0 && args[n-1] == nil {
		n--
	}
	return args[:n]
}

func asArgumentError(op string, err error) *ArgumentError {
	if ae, ok := err.(*ArgumentError); ok {
		return ae
	}
	return &ArgumentError{Op: op, Err: err}
}
