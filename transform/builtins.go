package transform

import (
	"strconv"

	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/matchval"
)

// InstallBuiltins registers the eight builtin.* transforms into r.
// builtin.pyexpr/builtin.pyscript read r's script bridge lazily at call
// time (via r.bridge, set through Registry.SetScriptBridge), so it is
// valid to call InstallBuiltins before a bridge is configured; a nil
// bridge causes both to fail with a GrammarError when invoked.
func InstallBuiltins(r *Registry) {
	_ = r.Insert("builtin.take", builtinTake)
	_ = r.Insert("builtin.int", builtinInt)
	_ = r.Insert("builtin.float", builtinFloat)
	_ = r.Insert("builtin.delete", builtinDelete)
	_ = r.Insert("builtin.mark", builtinMark)
	_ = r.Insert("builtin.filter", builtinFilter)
	_ = r.Insert("builtin.pyexpr", builtinPyexpr(r))
	_ = r.Insert("builtin.pyscript", builtinPyscript(r))
}

func argString(args []matchval.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(matchval.Str)
	return string(s), ok
}

// builtinTake implements builtin.take(m, field?): returns the named field
// of a struct, or the inner value of an enum. On the enum branch the field
// argument is ignored.
func builtinTake(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	field, hasField := argString(args, 0)
	switch v := m.(type) {
	case *matchval.Struct:
		if !hasField || field == "" {
			return nil, bargerr.NewGrammarErrorf(
				"if take is applied to a struct, it takes a field parameter in the form $builtin.take(expr, fieldname) where fieldname (without quotes) is the fieldname",
			)
		}
		fv, ok := v.Fields[field]
		if !ok {
			return nil, bargerr.NewGrammarErrorf("struct has no field %q", field)
		}
		return fv, nil
	case *matchval.Enum:
		return v.Value, nil
	default:
		return nil, bargerr.NewInternalErrorf("can only apply builtin.take to a struct or enum match, got %T", m)
	}
}

// builtinInt implements builtin.int(m): m must be a raw string.
func builtinInt(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	s, ok := m.(matchval.Str)
	if !ok {
		return nil, bargerr.NewGrammarErrorf("the match parameter of the int builtin must be a string match, not %T", m)
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return nil, bargerr.NewGrammarErrorf("cannot convert %q to int: %w", s, err)
	}
	return matchval.Foreign{V: n}, nil
}

// builtinFloat implements builtin.float(m): m must be a raw string.
func builtinFloat(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	s, ok := m.(matchval.Str)
	if !ok {
		return nil, bargerr.NewGrammarErrorf("the match parameter of the float builtin must be a string match, not %T", m)
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return nil, bargerr.NewGrammarErrorf("cannot convert %q to float: %w", s, err)
	}
	return matchval.Foreign{V: f}, nil
}

// builtinDelete implements builtin.delete(m, field?): nulls the named
// struct field, or nulls an enum's value (unconditionally with no field,
// only when the tag matches otherwise).
func builtinDelete(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	field, hasField := argString(args, 0)
	switch v := m.(type) {
	case *matchval.Struct:
		if !hasField || field == "" {
			return nil, bargerr.NewGrammarErrorf("builtin.delete applied to a struct requires a field parameter")
		}
		if !v.Set(field, matchval.Null{}) {
			return nil, bargerr.NewGrammarErrorf("struct has no field %q", field)
		}
		return v, nil
	case *matchval.Enum:
		if !hasField || v.Tag == field {
			v.Value = matchval.Null{}
		}
		return v, nil
	default:
		return nil, bargerr.NewInternalErrorf("can only apply builtin.delete to a struct or enum match, got %T", m)
	}
}

// builtinMark implements builtin.mark(m, name): attaches a presence marker.
func builtinMark(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	name, ok := argString(args, 0)
	if !ok || name == "" {
		return nil, bargerr.NewGrammarErrorf("mark must be a non-empty string")
	}
	mk, ok := m.(matchval.Markable)
	if !ok {
		return nil, bargerr.NewInternalErrorf("can only apply builtin.mark to a struct or enum match, got %T", m)
	}
	mk.Mark(name)
	return m, nil
}

// builtinFilter implements builtin.filter(m, name): m must be a list;
// returns the sublist whose elements carry the named marker.
func builtinFilter(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
	name, ok := argString(args, 0)
	if !ok || name == "" {
		return nil, bargerr.NewGrammarErrorf("mark must be a non-empty string")
	}
	lst, ok := m.(matchval.List)
	if !ok {
		return nil, bargerr.NewGrammarErrorf("filter builtin applied to non-list object %v", m)
	}
	out := matchval.List{}
	for _, item := range lst {
		mk, ok := item.(matchval.Markable)
		if ok && mk.HasMark(name) {
			out = append(out, item)
		}
	}
	return out, nil
}

// builtinPyexpr implements builtin.pyexpr(m, code_or_var, *args): evaluate
// a host-script expression with bindings {x: m, args: args}. r's bridge is
// read at call time, not at registration time.
func builtinPyexpr(r *Registry) Func {
	return func(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
		code, err := resolveScriptSource(args)
		if err != nil {
			return nil, err
		}
		if r.bridge == nil {
			return nil, bargerr.NewGrammarErrorf("builtin.pyexpr used but no script bridge is configured")
		}
		return r.bridge.Eval(code, m, restArgs(args))
	}
}

// builtinPyscript implements builtin.pyscript(m, code_or_var, *args):
// execute a host-script program with the same bindings; the final value of
// x in the script's namespace is returned.
func builtinPyscript(r *Registry) Func {
	return func(m matchval.Value, args ...matchval.Value) (matchval.Value, error) {
		code, err := resolveScriptSource(args)
		if err != nil {
			return nil, err
		}
		if r.bridge == nil {
			return nil, bargerr.NewGrammarErrorf("builtin.pyscript used but no script bridge is configured")
		}
		return r.bridge.Exec(code, m, restArgs(args))
	}
}

// resolveScriptSource extracts the literal script source from the first
// transform argument. Variable-name resolution to a module-level text
// string happens one layer up, in the match engine's transform-argument
// resolution: by the time a builtin sees it, code_or_var has already been
// resolved to a matchval.Str.
func resolveScriptSource(args []matchval.Value) (string, error) {
	code, ok := argString(args, 0)
	if !ok || code == "" {
		return "", bargerr.NewGrammarErrorf("pyexpr/pyscript must be given a non-empty text string or variable")
	}
	return code, nil
}

func restArgs(args []matchval.Value) []matchval.Value {
	if len(args) <= 1 {
		return nil
	}
	return args[1:]
}
