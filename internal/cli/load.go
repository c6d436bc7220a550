package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// NewLoadCommand bulk-loads quints from a line-oriented file: one
// statement per line, four whitespace-separated terms
// (subject predicate object graph), N-Triples term syntax, an optional
// trailing dot, # comments.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Bulk-load quints from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quints, err := readQuints(args[0])
			if err != nil {
				return err
			}

			s, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.MultiPut(cmd.Context(), quints); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d quints\n", len(quints))
			return nil
		},
	}
}

func readQuints(path string) ([]quint.Quint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var quints []quint.Quint
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), ".")

		terms, err := splitTerms(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if len(terms) != 4 {
			return nil, fmt.Errorf("%s:%d: expected 4 terms, got %d", path, lineNo, len(terms))
		}

		q := quint.Quint{
			Subject:   parseTerm(terms[0]),
			Predicate: parseTerm(terms[1]),
			Object:    parseTerm(terms[2]),
			Graph:     parseTerm(terms[3]),
		}
		quints = append(quints, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return quints, nil
}

// splitTerms splits on whitespace outside quoted literals.
func splitTerms(line string) ([]string, error) {
	var terms []string
	var current strings.Builder
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && inQuote && i+1 < len(line):
			current.WriteByte(c)
			i++
			current.WriteByte(line[i])
		case c == '"':
			inQuote = !inQuote
			current.WriteByte(c)
		case (c == ' ' || c == '\t') && !inQuote:
			if current.Len() > 0 {
				terms = append(terms, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string literal")
	}
	if current.Len() > 0 {
		terms = append(terms, current.String())
	}
	return terms, nil
}

// parseTerm reads one N-Triples-style term.
func parseTerm(s string) rdf.Term {
	switch {
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.IRI(s[1 : len(s)-1])
	case strings.HasPrefix(s, "_:"):
		return rdf.NewBlankNodeWithLabel(s)
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s)
	default:
		return rdf.IRI(s)
	}
}

func parseLiteral(s string) rdf.Term {
	end := -1
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			end = i
			break
		}
	}
	if end < 0 {
		return rdf.NewLiteral(strings.Trim(s, `"`))
	}

	lexical := unescape(s[1:end])
	tail := s[end+1:]
	switch {
	case strings.HasPrefix(tail, "@"):
		return rdf.NewLangLiteral(lexical, tail[1:])
	case strings.HasPrefix(tail, "^^<") && strings.HasSuffix(tail, ">"):
		return rdf.NewTypedLiteral(lexical, rdf.IRI(tail[3:len(tail)-1]))
	default:
		return rdf.NewLiteral(lexical)
	}
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
