package mock

import (
	"net/http"
	"strings"
)

// AnyMethod is the route method that matches every verb. A route registered
// with it is a weak match: an exact-method route always wins over it.
const AnyMethod = "*"

// Op is a persistence operation requested by the client.
type Op string

// Persistence operations.
const (
	OpCreate Op = "create"
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpPatch  Op = "patch"
)

// opMethods maps operations to the verb a REST backend expects.
var opMethods = map[Op]string{
	OpCreate: http.MethodPost,
	OpRead:   http.MethodGet,
	OpUpdate: http.MethodPut,
	OpDelete: http.MethodDelete,
	OpPatch:  http.MethodPatch,
}

// Method returns the HTTP verb for the operation.
func (o Op) Method() (string, bool) {
	m, ok := opMethods[o]
	return m, ok
}

// OpForMethod returns the operation a verb stands for.
func OpForMethod(method string) (Op, bool) {
	for op, m := range opMethods {
		if m == method {
			return op, true
		}
	}
	return "", false
}

// isMethod reports whether m is a canonical verb.
func isMethod(m string) bool {
	_, ok := OpForMethod(m)
	return ok
}

// isMethodToken reports whether v, as given by a caller, is a method
// argument. Only the exact upper-case verbs, the upper-case operation
// names ("READ") and AnyMethod qualify.
func isMethodToken(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if s == AnyMethod || isMethod(s) {
		return true
	}
	_, ok = opMethods[Op(strings.ToLower(s))]
	return ok && s == strings.ToUpper(s)
}

// normalizeMethod upper-cases m, resolves operation names to their verb
// and maps the empty string to AnyMethod.
func normalizeMethod(m string) (string, error) {
	if m == "" {
		return AnyMethod, nil
	}
	if verb, ok := Op(strings.ToLower(m)).Method(); ok {
		return verb, nil
	}
	m = strings.ToUpper(m)
	if m != AnyMethod && !isMethod(m) {
		return "", ErrInvalidMethod
	}
	return m, nil
}
