// Package cli defines the deckgen command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/molsim/deckgen/internal/ctxlog"
	"github.com/molsim/deckgen/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	LogLevel  string
	LogFormat string
	OutDir    string
}

// envOverrides are the environment knobs honored when the matching flag
// is left at its default.
type envOverrides struct {
	LogLevel  string `env:"DECKGEN_LOG_LEVEL"`
	LogFormat string `env:"DECKGEN_LOG_FORMAT"`
	OutDir    string `env:"DECKGEN_OUT_DIR"`
}

// Execute builds the root command and runs it with the provided args.
func Execute(args []string, outW, errW io.Writer) error {
	opts := &Options{LogLevel: "info", LogFormat: "text", OutDir: "decks"}

	rootCmd := newRootCommand(opts, errW)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(outW)
	rootCmd.SetErr(errW)
	return rootCmd.Execute()
}

func newRootCommand(opts *Options, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deckgen",
		Short:         "deckgen validates simulation plans and renders engine input decks",
		Long:          "deckgen takes a single declarative description of a simulation workflow, validates its physical and numerical consistency, and renders input decks for each target engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A .env next to the invocation is a convenience, not a requirement.
			_ = godotenv.Load()

			var overrides envOverrides
			if err := env.Parse(&overrides); err != nil {
				return fmt.Errorf("parsing environment overrides: %w", err)
			}
			applyOverride(cmd, "log-level", overrides.LogLevel, &opts.LogLevel)
			applyOverride(cmd, "log-format", overrides.LogFormat, &opts.LogFormat)
			applyOverride(cmd, "out", overrides.OutDir, &opts.OutDir)

			logger := logging.NewLogger(errW, opts.LogLevel, opts.LogFormat)
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			logger.Debug("Logger configured.", "level", opts.LogLevel, "format", opts.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log output format (text or json)")

	cmd.AddCommand(
		newValidateCommand(),
		newRenderCommand(opts),
		newEnginesCommand(),
	)
	return cmd
}

// applyOverride copies an environment value into the option unless the
// flag was set explicitly on the command line.
func applyOverride(cmd *cobra.Command, flagName, envValue string, target *string) {
	if envValue == "" {
		return
	}
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		return
	}
	*target = envValue
}
