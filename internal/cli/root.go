// Package cli implements the quintstore command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/undefinedsco/quintstore/internal/config"
	"github.com/undefinedsco/quintstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Endpoint   string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the quintstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quintstore",
		Short: "quintstore - SQL-backed RDF quint store",
		Long:  "A five-element (graph, subject, predicate, object, vector) RDF store with SPARQL push-down.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.Endpoint, "endpoint", "e", "", "store endpoint (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore resolves the endpoint (flag beats config file), builds the
// logger, and returns an opened store. Callers must Close it.
func openStore(cmd *cobra.Command, opts *RootOptions) (*store.Store, error) {
	endpoint := opts.Endpoint
	level := slog.LevelInfo

	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if endpoint == "" {
			endpoint = cfg.Endpoint
		}
		level, _ = cfg.SlogLevel()
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint: pass --endpoint or --config")
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	s, err := store.New(endpoint, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.Open(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}
