package mock

import (
	"bytes"
	"fmt"
	"regexp"
)

// Pattern is a compiled route path expression. It is immutable and safe
// for concurrent use.
type Pattern struct {
	// template is the source template, empty for raw regexps.
	template string
	// raw indicates a caller-supplied regexp used as-is.
	raw bool
	// regexp is the compiled expression.
	regexp *regexp.Regexp
}

// CompilePattern parses a route template and returns its anchored matcher.
//
// The template grammar:
//   - ":name" matches a single path segment. The name must start with a
//     letter or an underscore, otherwise the colon is literal, so that
//     "http://host:8080" needs no escaping.
//   - "*name" matches any number of segments, slashes included.
//   - "(...)" marks an optional part. Optional parts may nest.
//   - Anything else matches itself.
func CompilePattern(tpl string) (*Pattern, error) {
	return compileTemplate(tpl)
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(tpl string) *Pattern {
	p, err := CompilePattern(tpl)
	if err != nil {
		panic(err)
	}
	return p
}

// RegexpPattern wraps a raw regular expression. It is not anchored; each
// capture group yields one positional param.
func RegexpPattern(re *regexp.Regexp) *Pattern {
	return &Pattern{raw: true, regexp: re}
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return p.regexp.MatchString(path)
}

// Params extracts the positional captures for path.
func (p *Pattern) Params(path string) (Params, bool) {
	idx := p.regexp.FindStringSubmatchIndex(path)
	if idx == nil {
		return nil, false
	}

	params := make(Params, 0, len(idx)/2-1)
	for i := 2; i < len(idx); i += 2 {
		if idx[i] < 0 {
			params = append(params, Param{})
			continue
		}
		params = append(params, Param{Value: path[idx[i]:idx[i+1]], Matched: true})
	}
	return params, true
}

// Template returns the source template, or "" for a raw regexp.
func (p *Pattern) Template() string {
	return p.template
}

// IsRaw reports whether the pattern wraps a caller-supplied regexp.
func (p *Pattern) IsRaw() bool {
	return p.raw
}

// String returns the regular expression source.
func (p *Pattern) String() string {
	return p.regexp.String()
}

// templateExpr rewrites a template into an anchored regular expression.
func templateExpr(tpl string) (string, error) {
	var (
		pattern bytes.Buffer
		depth   int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '(':
			depth++
			pattern.WriteString("(?:")

		case c == ')' && depth > 0:
			depth--
			pattern.WriteString(")?")

		case c == ':' && i+1 < len(tpl) && isNameStart(tpl[i+1]):
			i = skipWord(tpl, i+1) - 1
			pattern.WriteString("([^/]+)")

		case c == '*' && i+1 < len(tpl) && isWordChar(tpl[i+1]):
			i = skipWord(tpl, i+1) - 1
			pattern.WriteString("(.*?)")

		default:
			pattern.WriteString(regexp.QuoteMeta(tpl[i : i+1]))
		}
	}

	if depth != 0 {
		return "", fmt.Errorf("%w %q: unbalanced parentheses", ErrInvalidPattern, tpl)
	}

	pattern.WriteByte('$')

	return pattern.String(), nil
}

// skipWord returns the index of the first non-word character at or after i.
func skipWord(s string, i int) int {
	for i < len(s) && isWordChar(s[i]) {
		i++
	}
	return i
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}
