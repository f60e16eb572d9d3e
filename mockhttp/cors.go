package mockhttp

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/vitalvas/faux/mock"
)

// ErrInvalidOrigin is returned for an origin pattern with more than one
// wildcard.
var ErrInvalidOrigin = errors.New("mockhttp: origin pattern contains multiple wildcards")

// CORSConfig enables cross-origin access to the mocked routes.
type CORSConfig struct {
	// AllowedOrigins lists exact origins, "*", or subdomain patterns like
	// "https://*.example.com".
	AllowedOrigins []string

	// ExposeHeaders lists the response headers the browser may expose.
	ExposeHeaders []string

	// MaxAge is the preflight cache duration in seconds. Zero omits the
	// header.
	MaxAge int
}

type originPattern struct {
	prefix string
	suffix string
}

type originMatcher struct {
	any      bool
	exact    []string
	patterns []originPattern
}

func newOriginMatcher(origins []string) (*originMatcher, error) {
	m := &originMatcher{}
	for _, o := range origins {
		if o == "*" {
			m.any = true
			continue
		}

		lower := strings.ToLower(o)
		prefix, suffix, found := strings.Cut(lower, "*")
		if !found {
			m.exact = append(m.exact, lower)
			continue
		}
		if strings.Contains(suffix, "*") {
			return nil, ErrInvalidOrigin
		}
		m.patterns = append(m.patterns, originPattern{prefix: prefix, suffix: suffix})
	}
	return m, nil
}

func (m *originMatcher) allowed(origin string) bool {
	if m.any {
		return true
	}

	lower := strings.ToLower(origin)
	if slices.Contains(m.exact, lower) {
		return true
	}
	for _, p := range m.patterns {
		if len(lower) >= len(p.prefix)+len(p.suffix) &&
			strings.HasPrefix(lower, p.prefix) &&
			strings.HasSuffix(lower, p.suffix) {
			return true
		}
	}
	return false
}

// corsMiddleware answers preflight requests and sets the CORS headers for
// allowed origins. The advertised methods are those of the mock routes
// matching the request path.
func corsMiddleware(srv *mock.Server, cfg CORSConfig) (mux.MiddlewareFunc, error) {
	origins, err := newOriginMatcher(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !origins.allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if origins.any {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			if methods := routeMethods(srv, r.URL.Path); len(methods) > 0 {
				h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				if len(cfg.ExposeHeaders) > 0 {
					h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
				}
				next.ServeHTTP(w, r)
				return
			}

			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			w.WriteHeader(http.StatusNoContent)
		})
	}, nil
}

// routeMethods returns the sorted verbs of the routes matching path.
func routeMethods(srv *mock.Server, path string) []string {
	var methods []string
	for _, route := range srv.Routes() {
		if !route.Match(path) {
			continue
		}
		if route.Method == mock.AnyMethod {
			return []string{http.MethodDelete, http.MethodGet, http.MethodPatch, http.MethodPost, http.MethodPut}
		}
		if !slices.Contains(methods, route.Method) {
			methods = append(methods, route.Method)
		}
	}
	slices.Sort(methods)
	return methods
}

// bodyLimitMiddleware caps the request body size. Reading past the limit
// fails, and serveMock answers 413.
func bodyLimitMiddleware(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
