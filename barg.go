// Package barg is the repository's top-level programmatic entry point:
// parse one or more inputs against a grammar, or generate a standalone Go
// parser from one.
package barg

import (
	"strings"

	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/bargerr"
	"github.com/barnii77/barg/codegen"
	"github.com/barnii77/barg/gsyntax"
	"github.com/barnii77/barg/matchengine"
	"github.com/barnii77/barg/module"
	"github.com/barnii77/barg/script"
)

// Parse parses grammarText once, compiles it against toplevel, and matches
// each of inputs against the resulting production. It returns one Iter per
// input that reached the match stage; a grammar or compile error is
// collected into the returned errors slice and contributes no Iter.
//
// A failure at the grammar-text or module-compile stage is fatal to the
// whole call (every input is affected equally by a single shared error), so
// in that case Parse returns a nil Iter slice and a single-element errors
// slice. Errors are collected rather than raised so partial success across
// multiple inputs stays observable to the caller.
func Parse(inputs []string, grammarText string, toplevel string) ([]matchengine.Iter, []error) {
	top, err := gsyntax.Parse(strings.NewReader(grammarText))
	if err != nil {
		return nil, []error{err}
	}
	// In-process matching gets a live script bridge; generated parsers are
	// the ones that run without scripting.
	mod, err := module.Compile(top, toplevel, module.WithScriptBridge(script.NewExprBridge()))
	if err != nil {
		return nil, []error{err}
	}

	root, ok := mod.Lookup(toplevel)
	if !ok {
		return nil, []error{bargerr.NewGrammarErrorf("undefined top-level production %q", toplevel)}
	}

	iters := make([]matchengine.Iter, len(inputs))
	for i, in := range inputs {
		iters[i] = matchengine.Match(mod, root, in, 0)
	}
	return iters, nil
}

// Generate parses grammarText, compiles it, and lowers it to standalone
// source for target. The only supported target today is "go".
//
// Generate compiles every assignment in the grammar, not just those
// reachable from one chosen production, so it doesn't need a toplevel name
// the way Parse does: module.Compile's variable-resolution pass already
// walks every assignment (not only ones reachable from its toplevel
// argument), so any defined name is an equally valid choice to satisfy that
// argument here.
func Generate(grammarText string, target string) ([]byte, error) {
	if target != "go" {
		return nil, bargerr.NewGrammarErrorf("unsupported codegen target %q", target)
	}
	top, err := gsyntax.Parse(strings.NewReader(grammarText))
	if err != nil {
		return nil, err
	}
	if len(top.Assignments) == 0 {
		return nil, bargerr.NewGrammarErrorf("grammar has no assignments to generate from")
	}
	mod, err := module.Compile(top, anyAssignmentName(top))
	if err != nil {
		return nil, err
	}
	return codegen.Generate(mod, "main")
}

func anyAssignmentName(top *ast.Toplevel) string {
	return top.Assignments[0].Identifier
}
