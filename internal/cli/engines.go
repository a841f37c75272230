package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/molsim/deckgen/internal/app"
)

func newEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the registered engine adapters and their deck kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := app.New().Engines()
			out := cmd.OutOrStdout()
			for _, kind := range reg.Kinds() {
				adapter, err := reg.Lookup(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-10s deck: %s\n", kind, adapter.DeckName())
			}
			return nil
		},
	}
}
