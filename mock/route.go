package mock

import (
	"fmt"
	"regexp"
)

// Route maps a path pattern and a method to a handler. Routes handed out by
// a Table or a Server are copies; changing them does not affect routing.
type Route struct {
	// Name identifies the route within its table.
	Name string
	// Pattern is the compiled path expression.
	Pattern *Pattern
	// Method is a canonical verb or AnyMethod.
	Method string
	// Handler is invoked when both the pattern and the method match.
	Handler Handler
}

// Match reports whether the route pattern matches path.
func (r Route) Match(path string) bool {
	return r.Pattern != nil && r.Pattern.Match(path)
}

// RouteSpec describes a route to register.
type RouteSpec struct {
	// Name is optional. Registering a name that already exists replaces
	// that route in place. An empty name is generated from the method and
	// the pattern.
	Name string

	// Pattern is mandatory: a template string, a *regexp.Regexp or a
	// compiled *Pattern.
	Pattern any

	// Method is a verb such as "GET", or AnyMethod. Empty means AnyMethod.
	Method string

	// Handler defaults to a handler that succeeds with a nil value.
	Handler Handler
}

// RouteMatch is a route resolved for a path, with its captured params.
type RouteMatch struct {
	Route  Route
	Params Params
}

// toPattern converts a RouteSpec pattern value.
func toPattern(v any) (*Pattern, error) {
	switch p := v.(type) {
	case nil:
		return nil, ErrMissingPattern
	case string:
		return CompilePattern(p)
	case *regexp.Regexp:
		if p == nil {
			return nil, ErrMissingPattern
		}
		return RegexpPattern(p), nil
	case *Pattern:
		if p == nil {
			return nil, ErrMissingPattern
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidPattern, v)
	}
}

// newRoute validates spec and builds a route. The name is left empty when
// the spec has none; the table assigns it.
func newRoute(spec RouteSpec) (Route, error) {
	pattern, err := toPattern(spec.Pattern)
	if err != nil {
		return Route{}, err
	}

	method, err := normalizeMethod(spec.Method)
	if err != nil {
		return Route{}, fmt.Errorf("%w %q", err, spec.Method)
	}

	handler := spec.Handler
	if handler == nil {
		handler = noopHandler
	}

	return Route{
		Name:    spec.Name,
		Pattern: pattern,
		Method:  method,
		Handler: handler,
	}, nil
}

// patternSource returns the text a generated route name is derived from.
func patternSource(p *Pattern) string {
	if p.IsRaw() {
		return p.String()
	}
	return p.Template()
}
