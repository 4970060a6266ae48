package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MarxCha/poa-dashboard/internal/domain/command"
)

var matchCmd = &cobra.Command{
	Use:   "match <utterance>...",
	Short: "Print the intent a spoken phrase resolves to",
	Long: `Runs the command grammar over each argument and prints the matched
intent, one per line. Useful for checking new phrasings offline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := command.NewMatcher()
		out := cmd.OutOrStdout()
		for _, text := range args {
			fmt.Fprintf(out, "%-10s %s\n", m.Match(text), strings.TrimSpace(text))
		}
		return nil
	},
}
