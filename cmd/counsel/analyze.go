package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/analysis"
)

const excerptLength = 72

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Print the summary, risk tally and clauses of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.report)
			}
			return printReport(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func printReport(w io.Writer, result *analyzed) error {
	r := result.report

	fmt.Fprintf(w, "%s\n\n", result.filename)
	fmt.Fprintf(w, "%s\n\n", r.Summary)
	fmt.Fprintf(w, "Risk: %d high, %d medium, %d low (%d clauses)\n", r.Risk.High, r.Risk.Medium, r.Risk.Low, r.Risk.Total)

	if len(r.Clauses) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tRISK\tPAGE\tEXCERPT")
	for i, c := range r.Clauses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, c.Type, c.Risk, c.Page, excerpt(c))
	}
	return tw.Flush()
}

func excerpt(c analysis.Clause) string {
	s := strings.Join(strings.Fields(c.Content), " ")
	if len(s) <= excerptLength {
		return s
	}
	cut := strings.LastIndexByte(s[:excerptLength], ' ')
	if cut <= 0 {
		cut = excerptLength
	}
	return s[:cut] + "..."
}
