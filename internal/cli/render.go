package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/molsim/deckgen/internal/app"
)

func newRenderCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <plan>",
		Short: "Validate a plan and render every stage's engine deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifacts, err := app.New().Render(cmd.Context(), args[0], opts.OutDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range artifacts {
				fmt.Fprintf(out, "%s/%s -> %s\n", a.Chain, a.Stage, a.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.OutDir, "out", opts.OutDir, "Directory rendered decks are written under")
	return cmd
}
