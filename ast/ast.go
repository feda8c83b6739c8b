// Package ast defines the grammar AST: a closed set of tagged variants
// built from regular-expression leaves, structural composition
// (struct/enum), repetition (list), variable references, and semantic
// transforms.
package ast

import "github.com/barnii77/barg/pattern"

// Node is implemented by every grammar AST variant. Line is the 1-based
// source line the node came from, or 0 if synthetic/unknown.
type Node interface {
	Line() int
	astNode()
}

type base struct {
	line int
}

func (b base) Line() int { return b.line }
func (base) astNode()    {}

// String is a regular-expression leaf.
type String struct {
	base
	Pattern *pattern.Pattern
}

func NewString(line int, p *pattern.Pattern) *String {
	return &String{base: base{line}, Pattern: p}
}

// Field is one (name, expr) pair of a Struct. Name may be empty for a
// positional field.
type Field struct {
	Name string
	Expr Node
}

// Struct is an ordered sequence of fields matched left-to-right.
type Struct struct {
	base
	Fields []Field
}

func NewStruct(line int, fields []Field) *Struct {
	return &Struct{base: base{line}, Fields: fields}
}

// FieldNames returns the declared field names in order, including empty
// strings for positional fields.
func (s *Struct) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Variant is one (tag, expr) alternative of an Enum.
type Variant struct {
	Tag  string
	Expr Node
}

// Enum is an ordered list of alternatives, tried in declaration order.
type Enum struct {
	base
	Variants []Variant
}

func NewEnum(line int, variants []Variant) *Enum {
	return &Enum{base: base{line}, Variants: variants}
}

// ListMode is the repetition mode of a List node: greedy (longest-first) or
// lazy (shortest-first).
type ListMode int

const (
	Greedy ListMode = iota
	Lazy
)

func (m ListMode) String() string {
	if m == Lazy {
		return "lazy"
	}
	return "greedy"
}

// ListBound is a repetition's upper bound: either a finite count or
// unbounded.
type ListBound struct {
	Finite bool
	N      int
}

// Unbounded is the ListBound representing "no upper bound".
var Unbounded = ListBound{Finite: false}

// Bounded returns a finite ListBound of n.
func Bounded(n int) ListBound {
	return ListBound{Finite: true, N: n}
}

// List is a repetition of Expr, bounded by [Start, End].
type List struct {
	base
	Expr  Node
	Mode  ListMode
	Start int
	End   ListBound
}

func NewList(line int, expr Node, mode ListMode, start int, end ListBound) *List {
	return &List{base: base{line}, Expr: expr, Mode: mode, Start: start, End: end}
}

// Variable is a reference to another named production in the enclosing
// module.
type Variable struct {
	base
	Name string
}

func NewVariable(line int, name string) *Variable {
	return &Variable{base: base{line}, Name: name}
}

// Transform applies the named (dotted) transform to the match of Expr,
// passing Args as additional, resolved arguments.
type Transform struct {
	base
	Expr Node
	Name string
	Args []Node
}

func NewTransform(line int, expr Node, name string, args []Node) *Transform {
	return &Transform{base: base{line}, Expr: expr, Name: name, Args: args}
}

// TextString is a literal string constant. It is never matched against
// input; it only ever appears as a transform argument.
type TextString struct {
	base
	Value string
}

func NewTextString(line int, value string) *TextString {
	return &TextString{base: base{line}, Value: value}
}

// Assignment binds Identifier to Expr at the top level of a module.
type Assignment struct {
	base
	Identifier string
	Expr       Node
}

func NewAssignment(line int, identifier string, expr Node) *Assignment {
	return &Assignment{base: base{line}, Identifier: identifier, Expr: expr}
}

// Toplevel is the whole parsed module: an ordered list of assignments.
type Toplevel struct {
	base
	Assignments []*Assignment
}

func NewToplevel(assignments []*Assignment) *Toplevel {
	return &Toplevel{Assignments: assignments}
}
