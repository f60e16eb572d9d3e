package mockhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vitalvas/faux/mock"
)

// defaultOverrideHeaders are the headers checked, in order, for the true
// method of an emulated POST request.
var defaultOverrideHeaders = []string{
	"X-HTTP-Method-Override",
	"X-Method-Override",
	"X-HTTP-Method",
}

// formMethodField and formModelField are the fields of a form encoded
// request sent by a client emulating both verbs and JSON.
const (
	formMethodField = "_method"
	formModelField  = "model"
)

// outcome is the result of one dispatched request.
type outcome struct {
	// handled is false when the request fell through to the native sync.
	handled bool
	value   any
	reason  string
	failed  bool
}

// exchange maps HTTP requests to mock server operations.
type exchange struct {
	server          *mock.Server
	overrideHeaders []string
	path            func(*http.Request) string
}

func newExchange(srv *mock.Server, headers []string, path func(*http.Request) string) *exchange {
	if len(headers) == 0 {
		headers = defaultOverrideHeaders
	}
	if path == nil {
		path = requestPath
	}

	names := make([]string, len(headers))
	copy(names, headers)

	return &exchange{
		server:          srv,
		overrideHeaders: names,
		path:            path,
	}
}

func requestPath(r *http.Request) string {
	return r.URL.Path
}

// dispatch runs the request against the server and waits for the handler.
// body is the raw request body, already read by the caller.
//
// A body that cannot be decoded is only an error when the request is mocked;
// otherwise the request is left unhandled and keeps its original body.
func (x *exchange) dispatch(ctx context.Context, r *http.Request, body []byte) (outcome, error) {
	payload, formMethod, decodeErr := decodePayload(r.Header.Get("Content-Type"), body)

	method := x.trueMethod(r, formMethod)
	op, ok := mock.OpForMethod(method)
	if !ok {
		return outcome{}, nil
	}

	// A client override forces emulation. Otherwise the server setting
	// applies.
	var emulate *bool
	if method != r.Method {
		emulate = mock.Bool(true)
	}

	entity := &requestEntity{url: x.path(r), payload: payload}

	if decodeErr != nil {
		if !x.server.Handles(op, entity.url, &mock.Options{EmulateHTTP: emulate}) {
			return outcome{}, nil
		}
		return outcome{}, decodeErr
	}

	done := make(chan outcome, 1)
	opts := &mock.Options{
		URL:            entity.url,
		Data:           payload,
		EmulateHTTP:    emulate,
		RecoverDelayed: true,
		Success: func(v any) {
			select {
			case done <- outcome{handled: true, value: v}:
			default:
			}
		},
		Error: func(reason string) {
			select {
			case done <- outcome{handled: true, reason: reason, failed: true}:
			default:
			}
		},
	}

	res, err := x.server.Sync(ctx, op, entity, opts)
	if !entity.dispatched.Load() {
		if err == nil || errors.Is(err, ErrPassthrough) || errors.Is(err, mock.ErrNoNativeSync) {
			return outcome{}, nil
		}
		return outcome{}, err
	}

	if p, ok := res.(*mock.Promise); ok {
		v, err := p.Wait(ctx)
		var failure *mock.Failure
		switch {
		case errors.As(err, &failure):
			return outcome{handled: true, reason: failure.Reason, failed: true}, nil
		case err != nil:
			return outcome{}, err
		}
		return outcome{handled: true, value: v}, nil
	}

	select {
	case o := <-done:
		return o, nil
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
}

// trueMethod returns the method the client meant. Only POST requests may
// carry an override.
func (x *exchange) trueMethod(r *http.Request, formMethod string) string {
	if r.Method != http.MethodPost {
		return r.Method
	}

	for _, h := range x.overrideHeaders {
		if v := r.Header.Get(h); v != "" {
			if m := strings.ToUpper(v); isOverridable(m) {
				return m
			}
			return r.Method
		}
	}

	if m := strings.ToUpper(formMethod); isOverridable(m) {
		return m
	}

	return r.Method
}

func isOverridable(m string) bool {
	switch m {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// decodePayload decodes a JSON body, or the JSON model field of a form
// encoded body. An empty body yields a nil payload.
func decodePayload(contentType string, body []byte) (any, string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, "", nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}

		var payload any
		if model := form.Get(formModelField); model != "" {
			if err := json.Unmarshal([]byte(model), &payload); err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrInvalidBody, err)
			}
		}
		return payload, form.Get(formMethodField), nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return payload, "", nil
}

// readBody reads and closes r.Body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()

	return io.ReadAll(r.Body)
}

// errorBody is the JSON document written for failures.
type errorBody struct {
	Error string `json:"error"`
}

// encode renders an outcome as a status code and a JSON body. A nil body
// means no content.
func (o outcome) encode() (int, []byte, error) {
	if o.failed {
		b, err := json.Marshal(errorBody{Error: o.reason})
		return statusFromReason(o.reason), b, err
	}

	if o.value == nil {
		return http.StatusNoContent, nil, nil
	}

	b, err := json.Marshal(o.value)
	return http.StatusOK, b, err
}

// statusFromReason returns the status a failure reason starts with, or 500.
func statusFromReason(reason string) int {
	if len(reason) < 3 {
		return http.StatusInternalServerError
	}
	if len(reason) > 3 && reason[3] != ' ' && reason[3] != ':' {
		return http.StatusInternalServerError
	}

	code, err := strconv.Atoi(reason[:3])
	if err != nil || code < 400 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}
