// Package fixtures loads mock routes from YAML files.
//
// A fixture file lists routes with either a static result or a dataset
// filtered by the captured params:
//
//	emulate_http: false
//	latency:
//	  min: 10ms
//	  max: 50ms
//	routes:
//	  - name: listBooks
//	    pattern: /books
//	    method: GET
//	    response:
//	      body: [{id: "1", title: Dune}]
//	  - name: getBook
//	    pattern: /books/:id
//	    method: GET
//	    data:
//	      - {id: "1", title: Dune}
//	    params:
//	      - {index: 0, maps_to: id}
//	    no_match: "404 book not found"
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vitalvas/faux/mock"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture is returned when a fixture file fails validation.
var ErrInvalidFixture = errors.New("fixtures: invalid fixture")

// File is a parsed fixture file.
type File struct {
	// EmulateHTTP sets the server-wide verb emulation.
	EmulateHTTP *bool `yaml:"emulate_http"`

	// Latency sets the emulated server latency.
	Latency *Latency `yaml:"latency"`

	// Routes are registered in file order.
	Routes []Route `yaml:"routes" validate:"dive"`
}

// Latency is a fixed (Max zero) or uniform random latency.
type Latency struct {
	Min time.Duration `yaml:"min" validate:"gte=0"`
	Max time.Duration `yaml:"max" validate:"omitempty,gtefield=Min"`
}

// Route describes one mock route.
type Route struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern" validate:"required"`
	// Regexp treats Pattern as a raw regular expression.
	Regexp bool   `yaml:"regexp"`
	Method string `yaml:"method" validate:"omitempty,method"`

	// Response is a static success result.
	Response *Response `yaml:"response"`
	// Error is a static failure reason.
	Error string `yaml:"error"`

	// Data is filtered by Params; the matching items are returned.
	Data []any `yaml:"data"`
	// Params maps positional captures to item fields.
	Params []ParamMapping `yaml:"params" validate:"dive"`
	// Many returns a list even when a single item matches.
	Many bool `yaml:"many"`
	// NoMatch is the failure reason when no item matches. Defaults to
	// "404".
	NoMatch string `yaml:"no_match"`
}

// Response is a static success result.
type Response struct {
	Body any `yaml:"body"`
}

// ParamMapping binds the capture at Index to the item field MapsTo.
type ParamMapping struct {
	Index  int    `yaml:"index" validate:"gte=0"`
	MapsTo string `yaml:"maps_to" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("method", validMethod); err != nil {
		panic(err)
	}
	return v
}

// validMethod accepts the verbs and operation names mock.RouteSpec accepts.
func validMethod(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case "*", "GET", "POST", "PUT", "PATCH", "DELETE",
		"CREATE", "READ", "UPDATE":
		return true
	}
	return false
}

// Load reads and parses the fixture file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}

	return Parse(bytes.NewReader(data))
}

// Parse decodes and validates a fixture document.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("fixtures: decode: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks the structure and the semantics of the file.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidFixture, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}

	seen := make(map[string]struct{}, len(f.Routes))
	for i, r := range f.Routes {
		if r.Name != "" {
			if _, ok := seen[r.Name]; ok {
				return fmt.Errorf("%w: duplicate route name %q", ErrInvalidFixture, r.Name)
			}
			seen[r.Name] = struct{}{}
		}

		kinds := 0
		if r.Response != nil {
			kinds++
		}
		if r.Error != "" {
			kinds++
		}
		if r.Data != nil {
			kinds++
		}
		if kinds > 1 {
			return fmt.Errorf("%w: route %d: response, error and data are exclusive", ErrInvalidFixture, i)
		}

		if len(r.Params) > 0 && r.Data == nil {
			return fmt.Errorf("%w: route %d: params require data", ErrInvalidFixture, i)
		}

		if r.Regexp {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("%w: route %d: %w", ErrInvalidFixture, i, err)
			}
		}
	}

	return nil
}

// Spec converts the route to a mock.RouteSpec.
func (r Route) Spec() (mock.RouteSpec, error) {
	spec := mock.RouteSpec{
		Name:    r.Name,
		Pattern: r.Pattern,
		Method:  r.Method,
		Handler: r.handler(),
	}

	if r.Regexp {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return mock.RouteSpec{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
		}
		spec.Pattern = re
	}

	return spec, nil
}

// Apply registers the routes and settings of the file on srv.
func (f *File) Apply(srv *mock.Server) error {
	for _, r := range f.Routes {
		spec, err := r.Spec()
		if err != nil {
			return err
		}
		if err := srv.AddRoute(spec); err != nil {
			return err
		}
	}

	if f.Latency != nil {
		srv.SetLatency(f.Latency.Min, f.Latency.Max)
	}
	if f.EmulateHTTP != nil {
		srv.SetEmulateHTTP(*f.EmulateHTTP)
	}

	return nil
}
