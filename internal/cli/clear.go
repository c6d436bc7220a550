package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClearCommand deletes every quint in the store. Destructive, so it
// requires --force.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all quints from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear without --force")
			}

			s, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion of all data")

	return cmd
}
