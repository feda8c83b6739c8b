// Package module compiles a grammar Toplevel AST into an immutable Module:
// a name-indexed set of assignments plus the transform registry and
// (optional) script bridge that the match engine and transform dispatcher
// consult at match time.
package module

import (
	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/script"
	"github.com/barnii77/barg/transform"
)

// Module holds a compiled grammar: its assignments in declaration order, a
// name index over them, the chosen top-level production, the transform
// registry, and the script bridge used by builtin.pyexpr/builtin.pyscript.
//
// A Module is immutable once Compile returns and may be shared freely
// across concurrent match-engine enumerations.
type Module struct {
	Assignments  []*ast.Assignment
	Defs         map[string]ast.Node
	Toplevel     string
	Reg          *transform.Registry
	ScriptBridge script.Bridge
}

// Registry returns the module's transform registry. Exposed as a method
// (rather than field access) so *Module satisfies matchengine.Resolver.
func (m *Module) Registry() *transform.Registry { return m.Reg }

// Option configures Compile.
type Option func(*options)

type options struct {
	registry *transform.Registry
	bridge   script.Bridge
}

// WithRegistry overrides the default registry (builtins pre-installed).
func WithRegistry(r *transform.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithScriptBridge sets the bridge used by builtin.pyexpr/builtin.pyscript.
// When unset, those builtins fail with a GrammarError at invocation time.
func WithScriptBridge(b script.Bridge) Option {
	return func(o *options) { o.bridge = b }
}

// Compile validates and indexes top, binding it to toplevel as the
// production match callers will select by default.
//
// Duplicate assignments are rejected as a GrammarError rather than
// resolved last-wins: a generator whose purpose is to catch
// grammar-authoring mistakes before match time should not silently shadow
// an earlier definition.
//
// Every ast.Variable reachable from any assignment is resolved eagerly, at
// compile time, against the resulting name index. An unresolved name is a
// GrammarError naming the variable.
func Compile(top *ast.Toplevel, toplevel string, opts ...Option) (*Module, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = transform.NewRegistry()
		transform.InstallBuiltins(o.registry)
	}
	if o.bridge != nil {
		o.registry.SetScriptBridge(o.bridge)
	}

	defs := make(map[string]ast.Node, len(top.Assignments))
	lines := make(map[string]int, len(top.Assignments))
	for _, a := range top.Assignments {
		if _, ok := defs[a.Identifier]; ok {
			return nil, bargerr.NewGrammarErrorf(
				"duplicate assignment of %q (first defined at line %d, redefined at line %d)",
				a.Identifier, lines[a.Identifier], a.Line(),
			).WithLine(a.Line())
		}
		defs[a.Identifier] = a.Expr
		lines[a.Identifier] = a.Line()
	}

	if _, ok := defs[toplevel]; !ok {
		return nil, bargerr.NewGrammarErrorf("undefined top-level production %q", toplevel)
	}

	mod := &Module{
		Assignments:  top.Assignments,
		Defs:         defs,
		Toplevel:     toplevel,
		Reg:          o.registry,
		ScriptBridge: o.bridge,
	}

	if err := mod.validateVariables(); err != nil {
		return nil, err
	}

	return mod, nil
}

// validateVariables walks every assignment's expression tree and reports
// the first ast.Variable whose name is not defined in the module.
func (m *Module) validateVariables() error {
	seen := map[ast.Node]bool{}
	for _, a := range m.Assignments {
		if err := walkVariables(a.Expr, m.Defs, seen); err != nil {
			return err
		}
	}
	return nil
}

func walkVariables(n ast.Node, defs map[string]ast.Node, seen map[ast.Node]bool) error {
	if n == nil || seen[n] {
		return nil
	}
	seen[n] = true

	switch e := n.(type) {
	case *ast.Variable:
		if _, ok := defs[e.Name]; !ok {
			return bargerr.NewGrammarErrorf("use of undefined name %q", e.Name).WithLine(e.Line())
		}
	case *ast.Struct:
		for _, f := range e.Fields {
			if err := walkVariables(f.Expr, defs, seen); err != nil {
				return err
			}
		}
	case *ast.Enum:
		for _, v := range e.Variants {
			if err := walkVariables(v.Expr, defs, seen); err != nil {
				return err
			}
		}
	case *ast.List:
		return walkVariables(e.Expr, defs, seen)
	case *ast.Transform:
		// Transform arguments are not walked: a bare identifier there is
		// an argument name (a field for take, a mark for filter, or a
		// text binding for pyexpr) resolved leniently at match time, not
		// a production reference.
		return walkVariables(e.Expr, defs, seen)
	case *ast.String, *ast.TextString:
		// leaves, nothing to resolve
	}
	return nil
}

// Lookup returns the expression bound to name, if any.
func (m *Module) Lookup(name string) (ast.Node, bool) {
	n, ok := m.Defs[name]
	return n, ok
}
