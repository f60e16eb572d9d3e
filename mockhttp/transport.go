package mockhttp

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/vitalvas/faux/mock"
)

// TransportConfig configures a Transport.
type TransportConfig struct {
	// Base receives the requests the mock server does not handle. When nil,
	// a clone of http.DefaultTransport is used.
	Base http.RoundTripper

	// OverrideHeaders is the list of headers checked in order for the true
	// method of a POST request. When nil, defaults to
	// ["X-HTTP-Method-Override", "X-Method-Override", "X-HTTP-Method"].
	OverrideHeaders []string

	// PathFunc returns the path routes are matched against. Defaults to
	// the request URL path.
	PathFunc func(r *http.Request) string

	// Logger receives one debug event per request. Defaults to a disabled
	// logger.
	Logger *zerolog.Logger
}

// Transport is an http.RoundTripper answering requests from a mock.Server.
type Transport struct {
	base     http.RoundTripper
	exchange *exchange
	logger   zerolog.Logger
}

// NewTransport creates a Transport for srv.
//
//	srv := mock.New(mockhttp.Passthrough)
//	srv.Get("/books/:id", getBook)
//	client := &http.Client{Transport: mockhttp.NewTransport(srv, mockhttp.TransportConfig{})}
func NewTransport(srv *mock.Server, cfg TransportConfig) *Transport {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Transport{
		base:     base,
		exchange: newExchange(srv, cfg.OverrideHeaders, cfg.PathFunc),
		logger:   logger,
	}
}

// Client returns an *http.Client using the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip dispatches the request to the mock server. Requests the server
// does not handle are sent through the base transport with their body
// intact.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	res, err := t.exchange.dispatch(req.Context(), req, body)
	if err != nil {
		return nil, err
	}

	if !res.handled {
		t.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("mockhttp: passthrough")

		clone := req.Clone(req.Context())
		if body != nil {
			clone.Body = io.NopCloser(bytes.NewReader(body))
			clone.ContentLength = int64(len(body))
		}
		return t.base.RoundTrip(clone)
	}

	status, payload, err := res.encode()
	if err != nil {
		return nil, err
	}

	t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", status).
		Msg("mockhttp: mocked")

	return newResponse(req, status, payload), nil
}

func newResponse(req *http.Request, status int, payload []byte) *http.Response {
	header := make(http.Header)
	if payload != nil {
		header.Set("Content-Type", "application/json")
	}
	header.Set("Content-Length", strconv.Itoa(len(payload)))

	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(payload)),
		ContentLength: int64(len(payload)),
		Request:       req,
	}
}
