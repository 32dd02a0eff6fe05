package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/counsel/internal/qa"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "ask <file> [question]",
		Short: "Ask questions about a document",
		Long: `Ask answers a single question given after the file, or, with --interactive,
reads one question per line from standard input until EOF or "exit".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			if !interactive && strings.TrimSpace(question) == "" {
				return errors.New("a question is required unless --interactive is set")
			}

			p, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.analyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			engine := qa.New(p.analyzer.Lexicon())
			conv := &qa.Conversation{}
			out := cmd.OutOrStdout()

			if !interactive {
				resp, err := conv.Ask(engine, question, result.report, result.doc)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp.Text)
				return nil
			}

			fmt.Fprintf(out, "%s\n\n", result.report.Summary)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					break
				}

				resp, err := conv.Ask(engine, line, result.report, result.doc)
				if errors.Is(err, qa.ErrEmptyQuestion) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n\n", resp.Text)
			}

			p.logger.Debug("conversation ended", "turns", conv.Len())
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read questions from standard input")

	return cmd
}
