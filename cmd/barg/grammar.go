package main

import (
	"strings"

	"github.com/barnii77/barg/gsyntax"
)

// parseGrammarForNames returns the identifiers assigned in grammarText, in
// declaration order. It exists so exec can default a toplevel name without
// duplicating gsyntax's own parse logic.
func parseGrammarForNames(grammarText string) ([]string, error) {
	top, err := gsyntax.Parse(strings.NewReader(grammarText))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(top.Assignments))
	for i, a := range top.Assignments {
		names[i] = a.Identifier
	}
	return names, nil
}
