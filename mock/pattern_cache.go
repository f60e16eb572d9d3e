package mock

import (
	"fmt"
	"regexp"
	"sync"
)

// patterns holds compiled templates. Patterns are immutable, so routes
// registered with the same template share one instance.
var patterns sync.Map

func compileTemplate(tpl string) (*Pattern, error) {
	if v, ok := patterns.Load(tpl); ok {
		return v.(*Pattern), nil
	}

	expr, err := templateExpr(tpl)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, tpl, err)
	}

	p, _ := patterns.LoadOrStore(tpl, &Pattern{template: tpl, regexp: re})
	return p.(*Pattern), nil
}
