package mockhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/faux/mock"
)

func TestOriginMatcher(t *testing.T) {
	m, err := newOriginMatcher([]string{"https://app.example.com", "https://*.dev.example.com"})
	require.NoError(t, err)

	tests := []struct {
		origin   string
		expected bool
	}{
		{"https://app.example.com", true},
		{"HTTPS://APP.EXAMPLE.COM", true},
		{"https://a.dev.example.com", true},
		{"https://dev.example.com", false},
		{"https://evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.allowed(tt.origin))
		})
	}

	_, err = newOriginMatcher([]string{"https://*.*.example.com"})
	assert.ErrorIs(t, err, ErrInvalidOrigin)
}

func TestHandlerCORS(t *testing.T) {
	srv, h := newTestHandler(HandlerConfig{
		CORS: &CORSConfig{
			AllowedOrigins: []string{"https://app.example.com"},
			ExposeHeaders:  []string{"X-Request-ID"},
			MaxAge:         600,
		},
	})
	srv.Delete("/books/:id", nil)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/books/1", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "DELETE,GET", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("actual request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/1", nil)
		req.Header.Set("Origin", "https://app.example.com")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/1", nil)
		req.Header.Set("Origin", "https://evil.com")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHandlerCORSInvalid(t *testing.T) {
	_, err := NewHandler(mock.New(Passthrough), HandlerConfig{
		CORS: &CORSConfig{AllowedOrigins: []string{"*.*"}},
	})
	assert.ErrorIs(t, err, ErrInvalidOrigin)
}

func TestRouteMethods(t *testing.T) {
	srv := mock.New(nil)
	srv.Get("/books/:id", nil)
	srv.Put("/books/:id", nil)
	srv.Get("/books/1", nil)
	srv.Add("any", "/authors")

	assert.Equal(t, []string{http.MethodGet, http.MethodPut}, routeMethods(srv, "/books/1"))
	assert.Len(t, routeMethods(srv, "/authors"), 5)
	assert.Empty(t, routeMethods(srv, "/nowhere"))
}

func TestHandlerBodyLimit(t *testing.T) {
	srv, h := newTestHandler(HandlerConfig{MaxBodyBytes: 8})
	srv.Post("/books", nil)

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Children of Dune"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
