package mock

import (
	"fmt"
	"sync"
)

// Table is an ordered set of routes. It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	routes []Route
	// seq feeds generated route names.
	seq int
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{}
}

// Add registers a route. A route whose name is already present is
// replaced at its position; any other route is appended.
func (t *Table) Add(spec RouteSpec) (Route, error) {
	route, err := newRoute(spec)
	if err != nil {
		return Route{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if route.Name == "" {
		route.Name = t.uniqueName(route)
	}

	if i := t.indexOf(route.Name); i >= 0 {
		t.routes[i] = route
	} else {
		t.routes = append(t.routes, route)
	}

	return route, nil
}

// Remove deletes the route of the given name, if present.
func (t *Table) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(name)
	if i < 0 {
		return false
	}
	t.routes = append(t.routes[:i:i], t.routes[i+1:]...)
	return true
}

// RemoveAll deletes every route.
func (t *Table) RemoveAll() {
	t.mu.Lock()
	t.routes = nil
	t.mu.Unlock()
}

// Get returns the route of the given name.
func (t *Table) Get(name string) (Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i := t.indexOf(name); i >= 0 {
		return t.routes[i], true
	}
	return Route{}, false
}

// At returns the route at index i in registration order.
func (t *Table) At(i int) (Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i < 0 || i >= len(t.routes) {
		return Route{}, false
	}
	return t.routes[i], true
}

// Len returns the number of routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Routes returns a copy of all routes in registration order.
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match resolves the route for a path and method.
//
// Routes are scanned from the most recently registered to the oldest. A
// route whose method equals method wins immediately. A route registered
// for AnyMethod is only a weak match: the newest one is kept and returned
// when no exact-method route matches anywhere in the table.
func (t *Table) Match(path, method string) (RouteMatch, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	weak := -1
	for i := len(t.routes) - 1; i >= 0; i-- {
		r := t.routes[i]
		if !r.Match(path) {
			continue
		}
		if r.Method == method {
			return routeMatch(r, path), true
		}
		if r.Method == AnyMethod && weak < 0 {
			weak = i
		}
	}

	if weak >= 0 {
		return routeMatch(t.routes[weak], path), true
	}

	return RouteMatch{}, false
}

func routeMatch(r Route, path string) RouteMatch {
	params, _ := r.Pattern.Params(path)
	return RouteMatch{Route: r, Params: params}
}

// indexOf returns the position of the named route or -1. The caller must
// hold t.mu.
func (t *Table) indexOf(name string) int {
	for i, r := range t.routes {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// uniqueName derives an unused route name from the method and pattern.
// The caller must hold t.mu for writing.
func (t *Table) uniqueName(r Route) string {
	for {
		t.seq++
		name := fmt.Sprintf("%s_%s_%d", r.Method, patternSource(r.Pattern), t.seq)
		if t.indexOf(name) < 0 {
			return name
		}
	}
}
