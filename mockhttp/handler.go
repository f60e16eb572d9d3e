package mockhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/vitalvas/faux/mock"
)

// DefaultAdminPrefix is the path prefix of the admin API.
const DefaultAdminPrefix = "/_mock"

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// AdminPrefix is the path prefix of the admin API. Defaults to
	// DefaultAdminPrefix.
	AdminPrefix string

	// DisableAdmin removes the admin API.
	DisableAdmin bool

	// RequestIDHeader is the header carrying the request ID. Defaults to
	// "X-Request-ID".
	RequestIDHeader string

	// OverrideHeaders is the list of headers checked in order for the true
	// method of a POST request. When nil, defaults to
	// ["X-HTTP-Method-Override", "X-Method-Override", "X-HTTP-Method"].
	OverrideHeaders []string

	// CORS enables cross-origin requests when not nil.
	CORS *CORSConfig

	// MaxBodyBytes caps the request body size. Zero means no limit.
	MaxBodyBytes int64

	// Logger receives request and panic events. Defaults to a disabled
	// logger.
	Logger *zerolog.Logger
}

// Handler serves the routes of a mock.Server over HTTP.
//
// The admin API lives under the admin prefix:
//
//	GET  /_mock/routes    registered routes in registration order
//	GET  /_mock/enabled   {"enabled": true}
//	PUT  /_mock/enabled   body {"enabled": false} toggles the server
//
// Every other request is dispatched to the server. Requests the server does
// not handle get a 404 JSON response.
type Handler struct {
	server   *mock.Server
	router   *mux.Router
	exchange *exchange
	logger   zerolog.Logger
}

// NewHandler creates a Handler for srv. It fails on an invalid CORS
// origin pattern.
func NewHandler(srv *mock.Server, cfg HandlerConfig) (*Handler, error) {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	idHeader := cfg.RequestIDHeader
	if idHeader == "" {
		idHeader = "X-Request-ID"
	}

	prefix := strings.TrimSuffix(cfg.AdminPrefix, "/")
	if prefix == "" {
		prefix = DefaultAdminPrefix
	}

	h := &Handler{
		server:   srv,
		router:   mux.NewRouter(),
		exchange: newExchange(srv, cfg.OverrideHeaders, nil),
		logger:   logger,
	}

	h.router.Use(requestIDMiddleware(idHeader), recoveryMiddleware(logger))

	if cfg.CORS != nil {
		cors, err := corsMiddleware(srv, *cfg.CORS)
		if err != nil {
			return nil, err
		}
		h.router.Use(cors)
	}
	if cfg.MaxBodyBytes > 0 {
		h.router.Use(bodyLimitMiddleware(cfg.MaxBodyBytes))
	}

	if !cfg.DisableAdmin {
		admin := h.router.PathPrefix(prefix).Subrouter()
		admin.HandleFunc("/routes", h.listRoutes).Methods(http.MethodGet)
		admin.HandleFunc("/enabled", h.getEnabled).Methods(http.MethodGet)
		admin.HandleFunc("/enabled", h.setEnabled).Methods(http.MethodPut)
	}

	h.router.PathPrefix("/").HandlerFunc(h.serveMock)

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) serveMock(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		status := http.StatusBadRequest
		if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}

	res, err := h.exchange.dispatch(r.Context(), r, body)
	switch {
	case errors.Is(err, ErrInvalidBody):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("mockhttp: dispatch failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	if !res.handled {
		h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("mockhttp: no route")
		writeJSON(w, http.StatusNotFound, errorBody{Error: http.StatusText(http.StatusNotFound)})
		return
	}

	status, payload, err := res.encode()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	h.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("id", mock.IDFromContext(r.Context())).
		Msg("mockhttp: mocked")

	if payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RouteInfo describes a registered route in admin responses.
type RouteInfo struct {
	Name    string `json:"name"`
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Regexp  string `json:"regexp"`
}

func (h *Handler) listRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := h.server.Routes()

	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		out = append(out, RouteInfo{
			Name:    r.Name,
			Method:  r.Method,
			Pattern: r.Pattern.Template(),
			Regexp:  r.Pattern.String(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) getEnabled(w http.ResponseWriter, _ *http.Request) {
	enabled := h.server.Enabled()
	writeJSON(w, http.StatusOK, enabledBody{Enabled: &enabled})
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request) {
	var body enabledBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: `expected {"enabled": bool}`})
		return
	}

	h.server.Enable(*body.Enabled)
	h.logger.Info().Bool("enabled", *body.Enabled).Msg("mockhttp: server toggled")

	h.getEnabled(w, r)
}

// writeJSON encodes v and writes it with the given status.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
