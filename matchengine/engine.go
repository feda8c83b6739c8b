// Package matchengine implements the lazy, backtracking match enumerator:
// given a grammar AST node, an input string, and a start position, it
// produces a restartable, forward-only iterator of (value, consumed) pairs
// in a deterministic order. Struct fields are tried left to right, enum
// variants in declaration order, and list alternatives longest-first
// (greedy) or shortest-first (lazy).
//
// The iterator is implemented as an explicit state machine (a tree of
// small combinators pulling from each other), never as a goroutine feeding
// a channel: matching is single-threaded and cooperatively lazy, so every
// combinator here advances synchronously when the caller asks for the next
// alternative. Abandoning an iterator abandons all in-flight alternatives
// below it.
package matchengine

import (
	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/matchval"
	"github.com/barnii77/barg/transform"
)

// Value is an alias of matchval.Value so callers of this package can spell
// match values without importing matchval directly.
type Value = matchval.Value

// MatchResult is one successful enumeration step: a value paired with the
// number of input characters it consumed.
type MatchResult struct {
	Value    Value
	Consumed int
}

// Iter is a pull-based, forward-only, restartable-per-call iterator over
// MatchResults, in the style of bufio.Scanner/sql.Rows: call Next until it
// reports false, reading Match after each true result; Err reports why a
// false came back.
type Iter interface {
	// Next advances the iterator and reports whether another match is
	// available. Once Next returns false, the iterator is exhausted and
	// must not be advanced again.
	Next() bool
	// Match returns the alternative produced by the most recent Next.
	Match() MatchResult
	// Err returns the first error encountered, or nil. An iterator that
	// errors reports Next() == false on the same or a subsequent call.
	Err() error
}

// Resolver is the subset of *module.Module the engine needs: name
// resolution for Variable nodes and access to the transform registry for
// Transform nodes. module.Module satisfies this structurally, so
// matchengine does not import package module.
type Resolver interface {
	Lookup(name string) (ast.Node, bool)
	Registry() *transform.Registry
}

// Match returns an iterator over every way expr can match input starting at
// pos, given mod for Variable/Transform resolution.
func Match(mod Resolver, expr ast.Node, input string, pos int) Iter {
	return &adapter{src: dispatch(mod, expr, input, pos)}
}

func dispatch(mod Resolver, expr ast.Node, input string, pos int) source {
	switch e := expr.(type) {
	case *ast.String:
		return matchString(e, input, pos)
	case *ast.Struct:
		return matchStruct(mod, e, input, pos)
	case *ast.Enum:
		return matchEnum(mod, e, input, pos)
	case *ast.List:
		return matchList(mod, e, input, pos)
	case *ast.Variable:
		return matchVariable(mod, e, input, pos)
	case *ast.Transform:
		return matchTransform(mod, e, input, pos)
	case *ast.TextString:
		return errSrc(bargerr.NewGrammarErrorf("TextString cannot be matched against input").WithLine(e.Line()))
	default:
		return errSrc(bargerr.NewInternalErrorf("matchengine: unhandled AST node %T", expr))
	}
}

// source is the internal pull contract every combinator is built from.
// pull returns (match, true, nil) for a yielded alternative, (zero, false,
// nil) once exhausted, or (zero, false, err) on failure. It is deliberately
// unexported: external callers only ever see the adapter-wrapped Iter.
type source interface {
	pull() (MatchResult, bool, error)
}

// adapter exposes a source as the public, bufio.Scanner-shaped Iter.
type adapter struct {
	src  source
	cur  MatchResult
	err  error
	done bool
}

func (a *adapter) Next() bool {
	if a.done {
		return false
	}
	m, ok, err := a.src.pull()
	if err != nil {
		a.err = err
		a.done = true
		return false
	}
	if !ok {
		a.done = true
		return false
	}
	a.cur = m
	return true
}

func (a *adapter) Match() MatchResult { return a.cur }
func (a *adapter) Err() error         { return a.err }

// --- primitive sources ---

type emptySrc struct{}

func (emptySrc) pull() (MatchResult, bool, error) { return MatchResult{}, false, nil }

type errSrcT struct{ err error }

func (e errSrcT) pull() (MatchResult, bool, error) { return MatchResult{}, false, e.err }

func errSrc(err error) source { return errSrcT{err: err} }

// onceSrc yields m exactly once.
type onceSrcT struct {
	m    MatchResult
	done bool
}

func (o *onceSrcT) pull() (MatchResult, bool, error) {
	if o.done {
		return MatchResult{}, false, nil
	}
	o.done = true
	return o.m, true, nil
}

func onceSrc(m MatchResult) source { return &onceSrcT{m: m} }

// sliceSrc yields a fixed, precomputed sequence of matches in order.
type sliceSrcT struct {
	ms []MatchResult
	i  int
}

func (s *sliceSrcT) pull() (MatchResult, bool, error) {
	if s.i >= len(s.ms) {
		return MatchResult{}, false, nil
	}
	m := s.ms[s.i]
	s.i++
	return m, true, nil
}

func sliceSrc(ms []MatchResult) source { return &sliceSrcT{ms: ms} }

// --- combinators ---

// mapSrc applies f to every value src yields, preserving Consumed.
type mapSrcT struct {
	src source
	f   func(Value) (Value, error)
}

func (m *mapSrcT) pull() (MatchResult, bool, error) {
	next, ok, err := m.src.pull()
	if err != nil || !ok {
		return MatchResult{}, ok, err
	}
	v, err := m.f(next.Value)
	if err != nil {
		return MatchResult{}, false, err
	}
	return MatchResult{Value: v, Consumed: next.Consumed}, true, nil
}

func mapSrc(src source, f func(Value) (Value, error)) source {
	return &mapSrcT{src: src, f: f}
}

// then is a flatMapping bind: for each match src yields, it runs f(match) to
// get a continuation source, flattens its yields, and sums Consumed so far.
// This is the combinator Struct-field concatenation and List recursion are
// both built from.
type thenT struct {
	src     source
	f       func(MatchResult) source
	cur     source
	curBase int
}

func (t *thenT) pull() (MatchResult, bool, error) {
	for {
		if t.cur != nil {
			m, ok, err := t.cur.pull()
			if err != nil {
				return MatchResult{}, false, err
			}
			if ok {
				return MatchResult{Value: m.Value, Consumed: t.curBase + m.Consumed}, true, nil
			}
			t.cur = nil
		}
		outer, ok, err := t.src.pull()
		if err != nil {
			return MatchResult{}, false, err
		}
		if !ok {
			return MatchResult{}, false, nil
		}
		t.cur = t.f(outer)
		t.curBase = outer.Consumed
	}
}

func then(src source, f func(MatchResult) source) source {
	return &thenT{src: src, f: f}
}

// orSrc yields everything the first source yields, then everything the
// second yields. Used for Enum's ordered alternation and List's
// stop-vs-extend choice.
type orSrcT struct {
	first, second source
	onFirst       bool
}

func (o *orSrcT) pull() (MatchResult, bool, error) {
	if o.onFirst {
		m, ok, err := o.first.pull()
		if err != nil {
			return MatchResult{}, false, err
		}
		if ok {
			return m, true, nil
		}
		o.onFirst = false
	}
	return o.second.pull()
}

func orSrc(first, second source) source {
	return &orSrcT{first: first, second: second, onFirst: true}
}

// --- String ---

func matchString(n *ast.String, input string, pos int) source {
	hits := n.Pattern.Matches(input, pos)
	ms := make([]MatchResult, len(hits))
	for i, h := range hits {
		ms[i] = MatchResult{Value: matchval.Str(h.Text), Consumed: h.Len}
	}
	return sliceSrc(ms)
}

// --- Struct ---

// matchStruct builds the nested then-chain left to right: match field 0,
// then for each of its matches recurse on field 1 at the advanced position,
// and so on, finally assembling a Struct value once every field has
// matched.
func matchStruct(mod Resolver, n *ast.Struct, input string, pos int) source {
	names := n.FieldNames()
	return matchStructFrom(mod, n.Fields, names, input, pos, nil)
}

// matchStructFrom yields Consumed relative to pos only (i.e. the sum of the
// remaining fields' lengths, not including anything already folded in by an
// enclosing then()). then() itself accumulates the running total across
// the whole chain via its curBase addition, so the terminal, all-fields-
// matched case below must report Consumed: 0 rather than a running total,
// or lengths would be double-counted going back up the chain.
func matchStructFrom(mod Resolver, fields []ast.Field, names []string, input string, pos int, acc []Value) source {
	if len(fields) == 0 {
		values := append([]Value(nil), acc...)
		s := matchval.NewStruct(names, values)
		return onceSrc(MatchResult{Value: s, Consumed: 0})
	}
	head := fields[0]
	rest := fields[1:]
	headSrc := dispatch(mod, head.Expr, input, pos)
	return then(headSrc, func(m MatchResult) source {
		nextAcc := append(append([]Value(nil), acc...), m.Value)
		return matchStructFrom(mod, rest, names, input, pos+m.Consumed, nextAcc)
	})
}

// --- Enum ---

func matchEnum(mod Resolver, n *ast.Enum, input string, pos int) source {
	var it source = emptySrc{}
	for i := len(n.Variants) - 1; i >= 0; i-- {
		v := n.Variants[i]
		tag := v.Tag
		branch := mapSrc(dispatch(mod, v.Expr, input, pos), func(val Value) (Value, error) {
			return &matchval.Enum{Tag: tag, Value: val}, nil
		})
		it = orSrc(branch, it)
	}
	return it
}

// --- List ---

func matchList(mod Resolver, n *ast.List, input string, pos int) source {
	return listFrom(mod, n, input, pos, nil, 0)
}

func listFrom(mod Resolver, n *ast.List, input string, pos int, acc []Value, length int) source {
	atMax := n.End.Finite && length >= n.End.N
	canYield := length >= n.Start

	yield := func() source {
		if !canYield {
			return emptySrc{}
		}
		values := append([]Value(nil), acc...)
		if values == nil {
			values = []Value{}
		}
		return onceSrc(MatchResult{Value: matchval.List(values), Consumed: 0})
	}

	extend := func() source {
		if atMax {
			return emptySrc{}
		}
		inner := dispatch(mod, n.Expr, input, pos)
		return then(inner, func(m MatchResult) source {
			if m.Consumed == 0 {
				// A zero-width inner match would make the recursion
				// non-terminating; treat it as a dead branch rather than
				// looping forever.
				return emptySrc{}
			}
			nextAcc := append(append([]Value(nil), acc...), m.Value)
			return listFrom(mod, n, input, pos+m.Consumed, nextAcc, length+1)
		})
	}

	switch n.Mode {
	case ast.Lazy:
		return orSrc(yield(), extend())
	default: // ast.Greedy
		return orSrc(extend(), yield())
	}
}

// --- Variable ---

func matchVariable(mod Resolver, n *ast.Variable, input string, pos int) source {
	def, ok := mod.Lookup(n.Name)
	if !ok {
		return errSrc(bargerr.NewGrammarErrorf("use of undefined name %q", n.Name).WithLine(n.Line()))
	}
	return dispatch(mod, def, input, pos)
}

// --- Transform ---

func matchTransform(mod Resolver, n *ast.Transform, input string, pos int) source {
	fn, err := mod.Registry().Lookup(n.Name)
	if err != nil {
		return errSrc(wrapLine(err, n.Line()))
	}
	inner := dispatch(mod, n.Expr, input, pos)
	return &transformSrc{mod: mod, n: n, fn: fn, src: inner}
}

// transformSrc resolves Transform's extra arguments once per inner match,
// then invokes fn and re-wraps its result with the inner match's Consumed:
// a transform rewrites the value but never changes how much input the
// inner expression absorbed.
type transformSrc struct {
	mod Resolver
	n   *ast.Transform
	fn  transform.Func
	src source
}

func (t *transformSrc) pull() (MatchResult, bool, error) {
	inner, ok, err := t.src.pull()
	if err != nil || !ok {
		return MatchResult{}, ok, err
	}
	args, err := resolveArgs(t.mod, t.n.Args)
	if err != nil {
		return MatchResult{}, false, err
	}
	out, err := t.fn(inner.Value, args...)
	if err != nil {
		return MatchResult{}, false, wrapLine(err, t.n.Line())
	}
	return MatchResult{Value: out, Consumed: inner.Consumed}, true, nil
}

// resolveArgs resolves a Transform node's extra arguments. A TextString
// argument carries its payload directly. A bare identifier substitutes the
// module-level text binding of that name when one exists (how
// pyexpr/pyscript fetch stored code); any other identifier passes through
// as a plain string, which is how field names reach take/delete and mark
// names reach mark/filter.
func resolveArgs(mod Resolver, args []ast.Node) ([]Value, error) {
	out := make([]Value, len(args))
	for i, a := range args {
		switch arg := a.(type) {
		case *ast.TextString:
			out[i] = matchval.Str(arg.Value)
		case *ast.Variable:
			if def, ok := mod.Lookup(arg.Name); ok {
				if ts, ok := def.(*ast.TextString); ok {
					out[i] = matchval.Str(ts.Value)
					continue
				}
			}
			out[i] = matchval.Str(arg.Name)
		default:
			return nil, bargerr.NewInternalErrorf("transform argument of kind %T is not resolvable", a)
		}
	}
	return out, nil
}

func wrapLine(err error, line int) error {
	if ge, ok := err.(*bargerr.GrammarError); ok && ge.Line == 0 {
		return ge.WithLine(line)
	}
	return err
}
