package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barnii77/barg"
)

var execFlags = struct {
	grammar      *string
	toplevelName *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "exec <text file>",
		Short:   "Print the first successful match of a grammar's top-level production",
		Example: `  barg exec input.txt --grammar grammar.barg`,
		Args:    cobra.ExactArgs(1),
		RunE:    runExec,
	}
	execFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	execFlags.toplevelName = cmd.Flags().String("toplevel-name", "", "top-level production name (default: the grammar's first assignment)")
	_ = cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	textPath := args[0]
	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("cannot read input file %s: %w", textPath, err)
	}

	grammarText, err := os.ReadFile(*execFlags.grammar)
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", *execFlags.grammar, err)
	}

	toplevel := *execFlags.toplevelName
	if toplevel == "" {
		toplevel, err = firstAssignmentName(string(grammarText))
		if err != nil {
			return err
		}
	}

	log.Info().Str("grammar", *execFlags.grammar).Str("toplevel", toplevel).Msg("compiling grammar")

	iters, errs := barg.Parse([]string{string(text)}, string(grammarText), toplevel)
	if len(errs) > 0 {
		return errs[0]
	}

	it := iters[0]
	if !it.Next() {
		if err := it.Err(); err != nil {
			return fmt.Errorf("match failed: %w", err)
		}
		return fmt.Errorf("no match")
	}
	fmt.Fprintf(os.Stdout, "%+v\n", it.Match().Value)
	return nil
}

// firstAssignmentName recovers a usable toplevel production name without
// requiring the caller to name one, by parsing the grammar once through the
// same concrete syntax front end barg.Parse uses internally.
func firstAssignmentName(grammarText string) (string, error) {
	top, err := parseGrammarForNames(grammarText)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "", fmt.Errorf("grammar has no assignments")
	}
	return top[0], nil
}
