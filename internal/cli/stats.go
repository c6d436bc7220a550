package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand reports store row, vector, and graph counts.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				out, err := json.MarshalIndent(map[string]int64{
					"quints":       stats.Quints,
					"with_vector":  stats.WithVector,
					"named_graphs": stats.NamedGraphs,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "quints:       %d\n", stats.Quints)
			fmt.Fprintf(cmd.OutOrStdout(), "with vector:  %d\n", stats.WithVector)
			fmt.Fprintf(cmd.OutOrStdout(), "named graphs: %d\n", stats.NamedGraphs)
			return nil
		},
	}
}
