package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var log zerolog.Logger

var rootFlags = struct {
	verbose *int
}{}

var rootCmd = &cobra.Command{
	Use:   "barg",
	Short: "Generate and run parsers for the barg grammar language",
	Long: `barg compiles a grammar into a lazy, backtracking match engine:
- Matches text against a grammar's productions directly.
- Generates a standalone Go parser from a grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		switch {
		case rootFlags.verbose != nil && *rootFlags.verbose >= 2:
			level = zerolog.DebugLevel
		case rootFlags.verbose != nil && *rootFlags.verbose == 1:
			level = zerolog.InfoLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).With().Timestamp().Logger()
	},
}

func init() {
	rootFlags.verbose = rootCmd.PersistentFlags().CountP("verbose", "v", "increase logging verbosity (-v: info, -vv: debug)")
}

func Execute() error {
	return rootCmd.Execute()
}
