// Package matchval defines the match-value model shared by the match
// engine and the transform registry: a raw string, a struct match, an enum
// match, a list of matches, or an arbitrary value produced by a transform.
// It is its own package (rather than living in matchengine or transform)
// so those two packages can depend on the value model without depending on
// each other.
package matchval

// Value is a match value: a raw string, a struct match, an enum match, a
// list of matches, or an arbitrary value produced by a transform.
type Value interface {
	isValue()
}

// Str is a raw string match, produced by an ast.String leaf.
type Str string

func (Str) isValue() {}

// List is a sequence of match values, produced by an ast.List node.
type List []Value

func (List) isValue() {}

// Struct is a struct match. Order and Values preserve every field in
// declaration order, including empty-named (positional-only) fields;
// Fields additionally indexes the named ones. Markers is the in-band
// presence set consulted by builtin.mark/builtin.filter.
type Struct struct {
	Order   []string
	Values  []Value
	Fields  map[string]Value
	Markers map[string]struct{}
}

func (*Struct) isValue() {}

// NewStruct builds a Struct from parallel name/value slices. Positional
// (empty-name) fields stay reachable through Values but are not
// addressable through Fields.
func NewStruct(names []string, values []Value) *Struct {
	s := &Struct{
		Order:  append([]string(nil), names...),
		Values: append([]Value(nil), values...),
		Fields: make(map[string]Value, len(names)),
	}
	for i, n := range names {
		if n == "" {
			continue
		}
		s.Fields[n] = values[i]
	}
	return s
}

// Set replaces the named field's value in both the name index and the
// positional view. It reports whether the field exists.
func (s *Struct) Set(name string, v Value) bool {
	if _, ok := s.Fields[name]; !ok {
		return false
	}
	s.Fields[name] = v
	for i, n := range s.Order {
		if n == name {
			s.Values[i] = v
		}
	}
	return true
}

// Mark attaches a named marker to s.
func (s *Struct) Mark(name string) {
	if s.Markers == nil {
		s.Markers = map[string]struct{}{}
	}
	s.Markers[name] = struct{}{}
}

// HasMark reports whether s carries the named marker.
func (s *Struct) HasMark(name string) bool {
	_, ok := s.Markers[name]
	return ok
}

// Enum is an enum match: Tag names the variant that produced Value.
type Enum struct {
	Tag     string
	Value   Value
	Markers map[string]struct{}
}

func (*Enum) isValue() {}

// Mark attaches a named marker to e.
func (e *Enum) Mark(name string) {
	if e.Markers == nil {
		e.Markers = map[string]struct{}{}
	}
	e.Markers[name] = struct{}{}
}

// HasMark reports whether e carries the named marker.
func (e *Enum) HasMark(name string) bool {
	_, ok := e.Markers[name]
	return ok
}

// Null is the sentinel value builtin.delete assigns.
type Null struct{}

func (Null) isValue() {}

// Foreign carries a transform's output that isn't otherwise representable
// as a Value (e.g. an int from builtin.int, a float from builtin.float).
type Foreign struct {
	V interface{}
}

func (Foreign) isValue() {}

// Markable is implemented by the structured match kinds (Struct, Enum) so
// builtin.mark/builtin.filter can operate uniformly.
type Markable interface {
	Value
	Mark(name string)
	HasMark(name string) bool
}

var (
	_ Markable = (*Struct)(nil)
	_ Markable = (*Enum)(nil)
)
