package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/total70/journal-ai/internal/entry"
	"github.com/total70/journal-ai/internal/journal"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [content]",
	Short: "Print a short summary of a note",
	Long:  `Summarize a note with the selected provider without saving anything. Content is read from standard input when no argument is given.`,
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr(), verbose)

		cfg, err := resolveConfig(cmd, logger)
		if err != nil {
			return err
		}

		raw, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		p, err := entry.New(cfg, journal.New(cfg.Journal.Binary), entry.WithLogger(logger))
		if err != nil {
			return err
		}

		summary, err := p.Summarize(cmd.Context(), raw)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
