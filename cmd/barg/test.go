package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Print how to run this repository's test suite",
		RunE:  runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stdout, "Run this repository's test suite with:")
	fmt.Fprintln(os.Stdout, "  go test ./...")
	return nil
}
