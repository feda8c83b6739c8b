// Package transform implements the dotted-name transform registry and the
// eight builtin transforms.
package transform

import (
	"strings"

	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/matchval"
	"github.com/barnii77/barg/script"
)

// Func is a transform: a function of a match value and zero or more
// resolved arguments that may raise a GrammarError (argument-contract
// violations) or InternalError (engine invariant violations).
type Func func(m matchval.Value, args ...matchval.Value) (matchval.Value, error)

// Registry is a tree-shaped mapping from dotted names to callables.
// Interior nodes are sub-maps; leaves are Funcs. It also carries the
// script bridge backing builtin.pyexpr/builtin.pyscript, set once via
// SetScriptBridge and read lazily by those two builtins at call time, so a
// bridge chosen after InstallBuiltins still reaches them.
type Registry struct {
	root   map[string]interface{}
	bridge script.Bridge
}

// NewRegistry returns an empty registry with no transforms installed.
func NewRegistry() *Registry {
	return &Registry{root: map[string]interface{}{}}
}

// SetScriptBridge sets the bridge builtin.pyexpr/builtin.pyscript delegate
// to. A nil bridge (the default) makes both fail with a GrammarError when
// invoked.
func (r *Registry) SetScriptBridge(b script.Bridge) {
	r.bridge = b
}

// Insert registers fn under dotted, creating intermediate namespace nodes
// as needed.
func (r *Registry) Insert(dotted string, fn Func) error {
	path := strings.Split(dotted, ".")
	if len(path) == 0 || path[0] == "" {
		return bargerr.NewGrammarErrorf("invalid transform name %q", dotted)
	}
	ns := r.root
	for _, name := range path[:len(path)-1] {
		next, ok := ns[name]
		if !ok {
			m := map[string]interface{}{}
			ns[name] = m
			ns = m
			continue
		}
		m, ok := next.(map[string]interface{})
		if !ok {
			return bargerr.NewGrammarErrorf("cannot register %q: %q is already a transform, not a namespace", dotted, name)
		}
		ns = m
	}
	ns[path[len(path)-1]] = fn
	return nil
}

// Lookup splits dotted on "." and walks the registry tree. A missing name
// is a GrammarError; a name that resolves to a namespace rather than a
// callable is an InternalError.
func (r *Registry) Lookup(dotted string) (Func, error) {
	path := strings.Split(dotted, ".")
	var cur interface{} = r.root
	for _, name := range path {
		ns, ok := cur.(map[string]interface{})
		if !ok {
			return nil, bargerr.NewInternalErrorf("transform path exhausted before reaching %q", dotted)
		}
		next, ok := ns[name]
		if !ok {
			return nil, bargerr.NewGrammarErrorf("usage of unknown transform %q", dotted)
		}
		cur = next
	}
	fn, ok := cur.(Func)
	if !ok {
		return nil, bargerr.NewInternalErrorf("transform %q is a namespace, not a function", dotted)
	}
	return fn, nil
}
