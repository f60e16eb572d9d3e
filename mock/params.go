package mock

// Param is a single positional capture. Matched is false when the capture
// sits in an optional part that was absent from the path.
type Param struct {
	Value   string
	Matched bool
}

// Params holds the captures of a matched route in pattern order.
type Params []Param

// Get returns the i-th captured value, or "" when it is absent.
func (p Params) Get(i int) string {
	v, _ := p.Lookup(i)
	return v
}

// Lookup returns the i-th captured value and whether it participated in
// the match.
func (p Params) Lookup(i int) (string, bool) {
	if i < 0 || i >= len(p) {
		return "", false
	}
	return p[i].Value, p[i].Matched
}

// Strings returns the captured values, with "" for absent captures.
func (p Params) Strings() []string {
	out := make([]string, len(p))
	for i, v := range p {
		out[i] = v.Value
	}
	return out
}
