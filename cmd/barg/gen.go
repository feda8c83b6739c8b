package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barnii77/barg/codegen"
	"github.com/barnii77/barg/gsyntax"
	"github.com/barnii77/barg/module"
)

var codegenFlags = struct {
	out *string
	pkg *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "codegen <grammar file>",
		Short:   "Generate a standalone Go parser from a grammar",
		Example: `  barg codegen grammar.barg -o parser.go -p myparser`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCodegen,
	}
	codegenFlags.out = cmd.Flags().StringP("out", "o", "", "output file path (default stdout)")
	codegenFlags.pkg = cmd.Flags().StringP("package", "p", "main", "generated package name")
	rootCmd.AddCommand(cmd)
}

func runCodegen(cmd *cobra.Command, args []string) error {
	grammarPath := args[0]
	grammarText, err := os.ReadFile(grammarPath)
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", grammarPath, err)
	}

	log.Info().Str("grammar", grammarPath).Str("package", *codegenFlags.pkg).Msg("generating parser")

	top, err := gsyntax.Parse(strings.NewReader(string(grammarText)))
	if err != nil {
		return fmt.Errorf("grammar syntax error: %w", err)
	}
	if len(top.Assignments) == 0 {
		return fmt.Errorf("grammar %s has no assignments to generate from", grammarPath)
	}
	mod, err := module.Compile(top, top.Assignments[0].Identifier)
	if err != nil {
		return fmt.Errorf("grammar compile error: %w", err)
	}
	src, err := codegen.Generate(mod, *codegenFlags.pkg)
	if err != nil {
		return fmt.Errorf("codegen failed: %w", err)
	}

	if *codegenFlags.out == "" {
		_, err = os.Stdout.Write(src)
		return err
	}

	f, err := os.OpenFile(*codegenFlags.out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(src); err != nil {
		return fmt.Errorf("failed to write generated source: %w", err)
	}
	return nil
}
