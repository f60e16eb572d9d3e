package mock

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string) Handler {
	return func(*Context, Params) Result { return OK(name) }
}

func mustAdd(t *testing.T, tbl *Table, spec RouteSpec) Route {
	t.Helper()
	r, err := tbl.Add(spec)
	require.NoError(t, err)
	return r
}

func TestTableAdd(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tbl := NewTable()
		r := mustAdd(t, tbl, RouteSpec{Pattern: "books/:id"})

		assert.Equal(t, AnyMethod, r.Method)
		assert.NotEmpty(t, r.Name)
		require.NotNil(t, r.Handler)
		assert.Equal(t, OK(nil), r.Handler(nil, nil))
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("method is upper-cased", func(t *testing.T) {
		r := mustAdd(t, NewTable(), RouteSpec{Pattern: "books", Method: "post"})
		assert.Equal(t, http.MethodPost, r.Method)
	})

	t.Run("generated names are unique", func(t *testing.T) {
		tbl := NewTable()
		r1 := mustAdd(t, tbl, RouteSpec{Pattern: "books", Method: http.MethodGet})
		r2 := mustAdd(t, tbl, RouteSpec{Pattern: "books", Method: http.MethodGet})

		assert.NotEqual(t, r1.Name, r2.Name)
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("same name replaces in place", func(t *testing.T) {
		tbl := NewTable()
		mustAdd(t, tbl, RouteSpec{Name: "a", Pattern: "a"})
		mustAdd(t, tbl, RouteSpec{Name: "b", Pattern: "b"})
		mustAdd(t, tbl, RouteSpec{Name: "a", Pattern: "c", Method: http.MethodGet})

		require.Equal(t, 2, tbl.Len())
		first, ok := tbl.At(0)
		require.True(t, ok)
		assert.Equal(t, "a", first.Name)
		assert.Equal(t, "c", first.Pattern.Template())
		assert.Equal(t, http.MethodGet, first.Method)
	})

	t.Run("raw regexp", func(t *testing.T) {
		re := regexp.MustCompile(`^books/(\d+)$`)
		r := mustAdd(t, NewTable(), RouteSpec{Pattern: re})
		assert.True(t, r.Pattern.IsRaw())
		assert.True(t, r.Match("books/12"))
	})

	t.Run("compiled pattern", func(t *testing.T) {
		p := MustCompilePattern("books")
		r := mustAdd(t, NewTable(), RouteSpec{Pattern: p})
		assert.Same(t, p, r.Pattern)
	})
}

func TestTableAddErrors(t *testing.T) {
	var nilRegexp *regexp.Regexp

	tests := []struct {
		name     string
		spec     RouteSpec
		expected error
	}{
		{name: "missing pattern", spec: RouteSpec{}, expected: ErrMissingPattern},
		{name: "nil regexp", spec: RouteSpec{Pattern: nilRegexp}, expected: ErrMissingPattern},
		{name: "unsupported pattern type", spec: RouteSpec{Pattern: 42}, expected: ErrInvalidPattern},
		{name: "unbalanced template", spec: RouteSpec{Pattern: "a(b"}, expected: ErrInvalidPattern},
		{name: "unknown method", spec: RouteSpec{Pattern: "a", Method: "FETCH"}, expected: ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable()
			_, err := tbl.Add(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), err.Error())
			assert.Equal(t, 0, tbl.Len())
		})
	}
}

func TestTableRemove(t *testing.T) {
	tbl := NewTable()
	mustAdd(t, tbl, RouteSpec{Name: "a", Pattern: "a"})
	mustAdd(t, tbl, RouteSpec{Name: "b", Pattern: "b"})
	mustAdd(t, tbl, RouteSpec{Name: "c", Pattern: "c"})

	assert.True(t, tbl.Remove("b"))
	assert.False(t, tbl.Remove("b"))
	assert.False(t, tbl.Remove("missing"))

	names := []string{}
	for _, r := range tbl.Routes() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)

	_, ok := tbl.Get("b")
	assert.False(t, ok)

	tbl.RemoveAll()
	assert.Equal(t, 0, tbl.Len())
	_, ok = tbl.At(0)
	assert.False(t, ok)
}

func TestTableRoutesReturnsCopy(t *testing.T) {
	tbl := NewTable()
	mustAdd(t, tbl, RouteSpec{Name: "a", Pattern: "a"})

	routes := tbl.Routes()
	routes[0].Name = "changed"

	r, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", r.Name)
}

func TestTableMatch(t *testing.T) {
	tests := []struct {
		name     string
		routes   []RouteSpec
		path     string
		method   string
		expected string
	}{
		{
			name: "newest exact wins",
			routes: []RouteSpec{
				{Name: "old", Pattern: "books/:id", Method: http.MethodGet},
				{Name: "new", Pattern: "books/*rest", Method: http.MethodGet},
			},
			path: "books/1", method: http.MethodGet, expected: "new",
		},
		{
			name: "older exact beats newer wildcard",
			routes: []RouteSpec{
				{Name: "exact", Pattern: "books/:id", Method: http.MethodGet},
				{Name: "any", Pattern: "books/:id", Method: AnyMethod},
			},
			path: "books/1", method: http.MethodGet, expected: "exact",
		},
		{
			name: "newest wildcard wins among wildcards",
			routes: []RouteSpec{
				{Name: "any-old", Pattern: "books/:id"},
				{Name: "any-new", Pattern: "books/:id"},
			},
			path: "books/1", method: http.MethodDelete, expected: "any-new",
		},
		{
			name: "wildcard used when methods differ",
			routes: []RouteSpec{
				{Name: "any", Pattern: "books/:id"},
				{Name: "post", Pattern: "books/:id", Method: http.MethodPost},
			},
			path: "books/1", method: http.MethodGet, expected: "any",
		},
		{
			name: "non-matching pattern skipped",
			routes: []RouteSpec{
				{Name: "books", Pattern: "books/:id", Method: http.MethodGet},
				{Name: "authors", Pattern: "authors/:id", Method: http.MethodGet},
			},
			path: "books/1", method: http.MethodGet, expected: "books",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable()
			for _, spec := range tt.routes {
				spec.Handler = namedHandler(spec.Name)
				mustAdd(t, tbl, spec)
			}

			m, ok := tbl.Match(tt.path, tt.method)
			require.True(t, ok)
			assert.Equal(t, tt.expected, m.Route.Name)
			assert.Equal(t, OK(tt.expected), m.Route.Handler(nil, m.Params))
		})
	}
}

func TestTableMatchNone(t *testing.T) {
	tbl := NewTable()
	mustAdd(t, tbl, RouteSpec{Pattern: "books/:id", Method: http.MethodPost})

	_, ok := tbl.Match("books/1", http.MethodGet)
	assert.False(t, ok)

	_, ok = tbl.Match("authors/1", http.MethodPost)
	assert.False(t, ok)

	_, ok = NewTable().Match("", http.MethodGet)
	assert.False(t, ok)
}

func TestTableMatchParams(t *testing.T) {
	tbl := NewTable()
	mustAdd(t, tbl, RouteSpec{Pattern: "docs/:section(/:subsection)"})

	m, ok := tbl.Match("docs/faq", http.MethodGet)
	require.True(t, ok)
	assert.Equal(t, values("faq", nil), m.Params)
}
