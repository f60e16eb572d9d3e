package fixtures

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/faux/mock"
)

func TestLoad(t *testing.T) {
	f, err := Load("testdata/books.yaml")
	require.NoError(t, err)

	require.NotNil(t, f.EmulateHTTP)
	assert.True(t, *f.EmulateHTTP)
	require.NotNil(t, f.Latency)
	assert.Equal(t, 5*time.Millisecond, f.Latency.Min)
	require.Len(t, f.Routes, 6)
	assert.Equal(t, "getBook", f.Routes[1].Name)
	assert.Equal(t, []ParamMapping{{Index: 0, MapsTo: "id"}}, f.Routes[1].Params)
	assert.True(t, f.Routes[5].Regexp)

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing pattern", doc: "routes:\n  - name: a\n"},
		{name: "bad method", doc: "routes:\n  - pattern: a\n    method: FETCH\n"},
		{name: "duplicate name", doc: "routes:\n  - {name: a, pattern: a}\n  - {name: a, pattern: b}\n"},
		{name: "exclusive results", doc: "routes:\n  - pattern: a\n    error: \"500\"\n    response: {body: 1}\n"},
		{name: "params without data", doc: "routes:\n  - pattern: a/:id\n    params: [{index: 0, maps_to: id}]\n"},
		{name: "negative index", doc: "routes:\n  - pattern: a/:id\n    data: []\n    params: [{index: -1, maps_to: id}]\n"},
		{name: "bad regexp", doc: "routes:\n  - pattern: \"(\"\n    regexp: true\n"},
		{name: "max below min", doc: "latency: {min: 20ms, max: 10ms}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFixture), err.Error())
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("routez: []\n"))
		assert.Error(t, err)
	})

	t.Run("empty document", func(t *testing.T) {
		f, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, f.Routes)
	})
}

type entity struct{ url string }

func (e entity) URL() string { return e.url }

func (e entity) JSON() any { return nil }

func (e entity) Trigger(string, ...any) {}

func dispatch(t *testing.T, srv *mock.Server, op mock.Op, url string) (any, error) {
	t.Helper()

	res, err := srv.Sync(context.Background(), op, entity{url: url}, nil)
	require.NoError(t, err)

	p, ok := res.(*mock.Promise)
	require.True(t, ok, "route for %s %s did not match", op, url)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestApply(t *testing.T) {
	f, err := Load("testdata/books.yaml")
	require.NoError(t, err)

	srv := mock.New(nil)
	require.NoError(t, f.Apply(srv))

	routes := srv.Routes()
	require.Len(t, routes, 6)
	assert.Equal(t, http.MethodGet, routes[1].Method)
	assert.Equal(t, mock.AnyMethod, routes[2].Method)
	assert.True(t, routes[5].Pattern.IsRaw())

	t.Run("single item", func(t *testing.T) {
		v, err := dispatch(t, srv, mock.OpRead, "books/2")
		require.NoError(t, err)
		assert.Equal(t, "Children of Dune", v.(map[string]any)["title"])
	})

	t.Run("no match", func(t *testing.T) {
		_, err := dispatch(t, srv, mock.OpRead, "books/9")
		assert.EqualError(t, err, "404 book not found")
	})

	t.Run("list", func(t *testing.T) {
		v, err := dispatch(t, srv, mock.OpRead, "books")
		require.NoError(t, err)
		assert.Len(t, v, 3)
	})

	t.Run("filtered list", func(t *testing.T) {
		v, err := dispatch(t, srv, mock.OpRead, "authors/herbert/books")
		require.NoError(t, err)
		assert.Len(t, v, 2)

		v, err = dispatch(t, srv, mock.OpRead, "authors/lem/books")
		require.NoError(t, err)
		assert.Equal(t, "Solaris", v.(map[string]any)["title"])
	})

	t.Run("emulated create", func(t *testing.T) {
		v, err := dispatch(t, srv, mock.OpCreate, "books")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 4}, v)
	})

	t.Run("static error", func(t *testing.T) {
		res, err := srv.Sync(context.Background(), mock.OpDelete, entity{url: "books/1"}, &mock.Options{EmulateHTTP: mock.Bool(false)})
		require.NoError(t, err)

		_, err = res.(*mock.Promise).Wait(context.Background())
		assert.EqualError(t, err, "403")
	})

	t.Run("latency applied", func(t *testing.T) {
		res, err := srv.Sync(context.Background(), mock.OpRead, entity{url: "legacy/1"}, nil)
		require.NoError(t, err)
		assert.False(t, res.(*mock.Promise).Settled())
	})
}

func TestValuesMatch(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		captured string
		expected bool
	}{
		{name: "string", value: "lem", captured: "lem", expected: true},
		{name: "int", value: 7, captured: "7", expected: true},
		{name: "int mismatch", value: 7, captured: "x", expected: false},
		{name: "float", value: 1.5, captured: "1.5", expected: true},
		{name: "bool", value: true, captured: "TRUE", expected: true},
		{name: "unsupported", value: []any{1}, captured: "1", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, valuesMatch(tt.value, tt.captured))
		})
	}
}
