// Package script implements the embedded script bridge behind
// builtin.pyexpr/builtin.pyscript: a black box accepting (code, bindings)
// and returning a value or error. It provides one concrete implementation
// on top of github.com/expr-lang/expr plus the Bridge interface so a
// different backend can be swapped in.
package script

import (
	"github.com/expr-lang/expr"

	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/matchval"
)

// Bridge is the interface builtin.pyexpr/builtin.pyscript invoke through.
// Eval backs pyexpr: evaluate code and return its result. Exec backs
// pyscript: run code and return the final value bound to "x".
type Bridge interface {
	Eval(code string, x matchval.Value, args []matchval.Value) (matchval.Value, error)
	Exec(code string, x matchval.Value, args []matchval.Value) (matchval.Value, error)
}

// exprBridge is a Bridge backed by github.com/expr-lang/expr.
type exprBridge struct{}

// NewExprBridge returns a Bridge that compiles and runs code with
// github.com/expr-lang/expr against an environment {"x": x, "args": args}.
//
// expr-lang/expr is an expression language: it has no in-script mutable
// assignment, so Exec cannot literally replay "run a script, then read
// back whatever it left bound to x". Exec instead evaluates code against
// the same environment and treats the expression's result as the script's
// final value of x. Grammars needing genuine multi-statement scripts need
// a different Bridge implementation.
func NewExprBridge() Bridge {
	return exprBridge{}
}

func (exprBridge) Eval(code string, x matchval.Value, args []matchval.Value) (matchval.Value, error) {
	return run(code, x, args)
}

func (exprBridge) Exec(code string, x matchval.Value, args []matchval.Value) (matchval.Value, error) {
	return run(code, x, args)
}

func run(code string, x matchval.Value, args []matchval.Value) (matchval.Value, error) {
	env := map[string]interface{}{
		"x":    unwrap(x),
		"args": unwrapAll(args),
	}
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, bargerr.NewGrammarErrorf("invalid script %q: %w", code, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, bargerr.NewGrammarErrorf("script %q failed: %w", code, err)
	}
	return wrap(out), nil
}

// unwrap projects a matchval.Value into a plain Go value suitable for
// expr's environment: Str becomes a string, Foreign is unboxed, and
// structured values (Struct/Enum/List) are passed through as-is so script
// code can still call builtin.take-style field access via expr's map/struct
// indexing.
func unwrap(v matchval.Value) interface{} {
	switch t := v.(type) {
	case matchval.Str:
		return string(t)
	case matchval.Foreign:
		return t.V
	case matchval.Null:
		return nil
	case matchval.List:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = unwrap(e)
		}
		return out
	default:
		return v
	}
}

func unwrapAll(vs []matchval.Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = unwrap(v)
	}
	return out
}

// wrap projects a plain Go value returned by expr back into a matchval.Value.
func wrap(v interface{}) matchval.Value {
	switch t := v.(type) {
	case string:
		return matchval.Str(t)
	case matchval.Value:
		return t
	case nil:
		return matchval.Null{}
	default:
		return matchval.Foreign{V: t}
	}
}
