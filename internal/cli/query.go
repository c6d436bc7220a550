package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/undefinedsco/quintstore/internal/sparql"
)

// NewQueryCommand runs a SPARQL SELECT or ASK query through the
// planner. Queries the planner cannot push down fail here unless a
// general evaluator is wired in by the embedding application; the
// --explain flag shows eligibility without executing anything.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var (
		explain   bool
		queryFile string
	)

	cmd := &cobra.Command{
		Use:   "query [sparql]",
		Short: "Run a SPARQL query against the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryText, err := readQuery(args, queryFile)
			if err != nil {
				return err
			}

			s, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			planner := sparql.NewPlanner(s)

			if explain {
				params, eligible := planner.Explain(queryText)
				if !eligible {
					fmt.Fprintln(cmd.OutOrStdout(), "not eligible for push-down (would delegate)")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "push-down eligible: vars=%v limit=%d offset=%d distinct=%v\n",
					params.Vars, params.Limit, params.Offset, params.Distinct)
				return nil
			}

			result, err := planner.Query(cmd.Context(), queryText)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, result)
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show push-down eligibility instead of executing")
	cmd.Flags().StringVarP(&queryFile, "file", "f", "", "read the query from a file")
	return cmd
}

func readQuery(args []string, queryFile string) (string, error) {
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", fmt.Errorf("read query file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("pass a query string or --file")
}

func printResult(cmd *cobra.Command, opts *RootOptions, result *sparql.Result) error {
	if result.Form == sparql.FormAsk {
		fmt.Fprintln(cmd.OutOrStdout(), result.Bool)
		return nil
	}

	if opts.Format == "json" {
		rows := make([]map[string]string, 0, len(result.Bindings))
		for _, b := range result.Bindings {
			row := make(map[string]string, len(b))
			for name, term := range b {
				row[name] = term.String()
			}
			rows = append(rows, row)
		}
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	for _, b := range result.Bindings {
		names := make([]string, 0, len(b))
		for name := range b {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, "?"+name+"="+b[name].String())
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "(%d results)\n", len(result.Bindings))
	return nil
}
