package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/analysis"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the analysis report as JSON",
		Long: `Export writes the report of a document as JSON. With -o, the report is
written to the named file; "-o ." names it legal-analysis-YYYY-MM-DD.json in
the current directory. Without -o it goes to standard output.`,
		Args: cobra.ExactArgs(1),
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

			now := time.Now()
			data, err := analysis.NewExport(result.report, result.filename, now, version).Marshal()
			if err != nil {
				return err
			}

			switch output {
			case "":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			case ".":
				output = analysis.ExportFilename(now)
			}

			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return cmd
}
