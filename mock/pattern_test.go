package mock

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(vs ...any) Params {
	out := make(Params, 0, len(vs))
	for _, v := range vs {
		if v == nil {
			out = append(out, Param{})
			continue
		}
		out = append(out, Param{Value: v.(string), Matched: true})
	}
	return out
}

func TestCompilePatternParams(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
		expected Params
	}{
		{name: "literal", template: "some/url", path: "some/url", expected: values()},
		{name: "two named", template: "1/2/:param1/:param2/3/4", path: "1/2/hello/world/3/4", expected: values("hello", "world")},
		{name: "trailing splat", template: "1/2/*param", path: "1/2/hello/world/3/4", expected: values("hello/world/3/4")},
		{name: "inner splat", template: "1/2/*param/3/4", path: "1/2/hello/world/3/4", expected: values("hello/world")},
		{name: "named then splat", template: "1/2/:param1/:param2/*param", path: "1/2/hello/world/3/4", expected: values("hello", "world", "3/4")},
		{name: "splat then named", template: "1/2/*param1/:param2", path: "1/2/hello/world/3/4", expected: values("hello/world/3", "4")},
		{name: "prefixed named", template: "book-:title/page-:number", path: "book-do androids dream of electric sheep/page-303", expected: values("do androids dream of electric sheep", "303")},
		{name: "double colon", template: "book::title/page::number", path: "book:do androids dream of electric sheep/page:303", expected: values("do androids dream of electric sheep", "303")},
		{name: "named inside segment", template: "search/:query/p:page", path: "search/obama/p2", expected: values("obama", "2")},
		{name: "file splat", template: "file/*path", path: "file/nested/folder/file.txt", expected: values("nested/folder/file.txt")},
		{name: "optional absent", template: "docs/:section(/:subsection)", path: "docs/faq", expected: values("faq", nil)},
		{name: "optional present", template: "docs/:section(/:subsection)", path: "docs/faq/installing", expected: values("faq", "installing")},
		{name: "two optionals absent", template: "docs/:section(/:subsection)(/:subsubsection)", path: "docs/faq", expected: values("faq", nil, nil)},
		{name: "two optionals one present", template: "docs/:section(/:subsection)(/:subsubsection)", path: "docs/faq/installing", expected: values("faq", "installing", nil)},
		{name: "two optionals present", template: "docs/:section(/:subsection)(/:subsubsection)", path: "docs/faq/installing/macos", expected: values("faq", "installing", "macos")},
		{name: "optional literal absent", template: "docs/(maybe/):id", path: "docs/1", expected: values("1")},
		{name: "optional literal present", template: "docs/(maybe/):id", path: "docs/maybe/1", expected: values("1")},
		{name: "hashes without optional", template: "#/##/###/(something/)else", path: "#/##/###/else", expected: values()},
		{name: "hashes with optional", template: "#/##/###/(something/)else", path: "#/##/###/something/else", expected: values()},
		{name: "optional named absent", template: "#/##/###/(:something/)else", path: "#/##/###/else", expected: values(nil)},
		{name: "optional named present", template: "#/##/###/(:something/)else", path: "#/##/###/anything/else", expected: values("anything")},
		{name: "optional prefixed absent", template: "#/##/###/(###:something/)else", path: "#/##/###/else", expected: values(nil)},
		{name: "optional prefixed present", template: "#/##/###/(###:something/)else", path: "#/##/###/###anything/else", expected: values("anything")},
		{name: "nested optionals", template: "a(/:b(/:c))", path: "a/x", expected: values("x", nil)},
		{name: "port literal", template: "example.com:8080", path: "example.com:8080", expected: values()},
		{name: "scheme and port", template: "http://example.com:8080", path: "http://example.com:8080", expected: values()},
		{name: "port then named", template: "example.com:8080/:section", path: "example.com:8080/home", expected: values("home")},
		{name: "optional port", template: "example.com(:8080)", path: "example.com", expected: values()},
		{name: "optional port then named", template: "example.com(:8080)/:section", path: "example.com/home", expected: values("home")},
		{name: "optional scheme and port", template: "(http://)example.com(:8080)/:section", path: "example.com/home", expected: values("home")},
		{name: "unmatched close paren", template: "a)b/:id", path: "a)b/1", expected: values("1")},
		{name: "lone star", template: "a/*", path: "a/*", expected: values()},
		{name: "regexp metacharacters", template: "a.b+c?/:id", path: "a.b+c?/1", expected: values("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.template)
			require.NoError(t, err)

			params, ok := p.Params(tt.path)
			require.True(t, ok, "%q should match %q", tt.template, tt.path)
			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestCompilePatternNoMatch(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
	}{
		{name: "other port", template: "example.com:8080", path: "example.com:8081"},
		{name: "other port then named", template: "example.com:8080/:section", path: "example.com:8081/home"},
		{name: "optional other port", template: "example.com(:8080)", path: "example.com:8081"},
		{name: "optional other port then named", template: "example.com(:8080)/:section", path: "example.com:8081/home"},
		{name: "named does not cross slash", template: "books/:id", path: "books/1/pages"},
		{name: "anchored at start", template: "books/:id", path: "/books/1"},
		{name: "metacharacters are literal", template: "a.b", path: "axb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.template)
			require.NoError(t, err)
			assert.False(t, p.Match(tt.path))
		})
	}
}

func TestCompilePatternNameStart(t *testing.T) {
	tests := []struct {
		template string
		path     string
	}{
		{template: "example.com/:section", path: "example.com/some-section"},
		{template: "example.com:section", path: "example.comsome-section"},
		{template: "example.com/(:section)", path: "example.com/some-section"},
		{template: "example.com(/:section)", path: "example.com/some-section"},
		{template: "example.com(:section)", path: "example.comsome-section"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.True(t, MustCompilePattern(tt.template).Match(tt.path))

			digit := regexp.MustCompile(`:section`).ReplaceAllString(tt.template, ":5ection")
			assert.False(t, MustCompilePattern(digit).Match(tt.path), digit)

			inner := regexp.MustCompile(`:section`).ReplaceAllString(tt.template, ":s3ction")
			assert.True(t, MustCompilePattern(inner).Match(tt.path), inner)
		})
	}
}

func TestCompilePatternErrors(t *testing.T) {
	t.Run("unclosed optional", func(t *testing.T) {
		_, err := CompilePattern("docs(/:section")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPattern))
	})

	t.Run("must compile panics", func(t *testing.T) {
		assert.Panics(t, func() { MustCompilePattern("((") })
	})

	t.Run("empty template matches empty path only", func(t *testing.T) {
		p, err := CompilePattern("")
		require.NoError(t, err)
		assert.True(t, p.Match(""))
		assert.False(t, p.Match("x"))
	})
}

func TestRegexpPattern(t *testing.T) {
	re := regexp.MustCompile(`\/?this\/is\/an?\/([^\/]+)\/([^\/]+)\/?`)
	p := RegexpPattern(re)

	assert.True(t, p.IsRaw())
	assert.Empty(t, p.Template())
	assert.Equal(t, re.String(), p.String())

	params, ok := p.Params("is/this/is/a/regular/expression/?")
	require.True(t, ok)
	assert.Equal(t, []string{"regular", "expression"}, params.Strings())

	_, ok = p.Params("nothing here")
	assert.False(t, ok)
}

func TestPatternTemplate(t *testing.T) {
	p := MustCompilePattern("books/:id")
	assert.False(t, p.IsRaw())
	assert.Equal(t, "books/:id", p.Template())
	assert.Equal(t, `^books/([^/]+)$`, p.String())
}

func TestParams(t *testing.T) {
	p := values("a", nil)

	v, ok := p.Lookup(0)
	assert.Equal(t, "a", v)
	assert.True(t, ok)

	v, ok = p.Lookup(1)
	assert.Empty(t, v)
	assert.False(t, ok)

	_, ok = p.Lookup(5)
	assert.False(t, ok)
	assert.Empty(t, p.Get(-1))
	assert.Equal(t, []string{"a", ""}, p.Strings())
}
