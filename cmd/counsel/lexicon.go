package main

import (
	"github.com/spf13/cobra"
)

func newLexiconCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "Print the active clause lexicon as TOML",
		Long: `Lexicon prints the active lexicon. The output is a valid lexicon file and
can be edited and passed back with --lexicon.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := opts.loadLexicon()
			if err != nil {
				return err
			}

			data, err := lex.MarshalTOML()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
