package fixtures

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vitalvas/faux/mock"
)

// defaultNoMatch is the failure reason of a dataset route without matches.
const defaultNoMatch = "404"

// handler builds the mock handler of the route.
func (r Route) handler() mock.Handler {
	switch {
	case r.Error != "":
		reason := r.Error
		return func(*mock.Context, mock.Params) mock.Result {
			return mock.Fail(reason)
		}

	case r.Data != nil:
		return r.datasetHandler()

	case r.Response != nil:
		body := r.Response.Body
		return func(*mock.Context, mock.Params) mock.Result {
			return mock.OK(body)
		}
	}

	return nil
}

// datasetHandler filters Data by the captured params.
func (r Route) datasetHandler() mock.Handler {
	data := r.Data
	params := r.Params
	many := r.Many

	noMatch := r.NoMatch
	if noMatch == "" {
		noMatch = defaultNoMatch
	}

	return func(_ *mock.Context, captured mock.Params) mock.Result {
		filter := make(map[string]string, len(params))
		for _, p := range params {
			if v, ok := captured.Lookup(p.Index); ok {
				filter[p.MapsTo] = v
			}
		}

		var matches []any
		for _, item := range data {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if matchesFilter(fields, filter) {
				matches = append(matches, item)
			}
		}

		switch {
		case len(matches) == 0 && (len(filter) > 0 || !many):
			return mock.Fail(noMatch)
		case len(matches) == 1 && !many:
			return mock.OK(matches[0])
		case matches == nil:
			return mock.OK([]any{})
		}
		return mock.OK(matches)
	}
}

func matchesFilter(fields map[string]any, filter map[string]string) bool {
	for field, want := range filter {
		got, ok := fields[field]
		if !ok || !valuesMatch(got, want) {
			return false
		}
	}
	return true
}

// valuesMatch compares a decoded YAML scalar with a captured path value.
func valuesMatch(a any, b string) bool {
	switch v := a.(type) {
	case string:
		return v == b
	case int:
		i, err := strconv.Atoi(b)
		return err == nil && v == i
	case float64:
		f, err := strconv.ParseFloat(b, 64)
		return err == nil && v == f
	case bool:
		return strings.ToLower(b) == fmt.Sprintf("%v", v)
	default:
		return false
	}
}
