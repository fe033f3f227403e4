package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usageFormat string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage per purpose",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().StringVarP(&usageFormat, "format", "f", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Usage.Summary(cmd.Context())
	if err != nil {
		return err
	}
	if usageFormat == "json" || usageFormat == "yaml" {
		return writeOutput(cmd.OutOrStdout(), usageFormat, summary)
	}

	out := cmd.OutOrStdout()
	if len(summary) == 0 {
		fmt.Fprintln(out, "No completions recorded.")
		return nil
	}
	fmt.Fprintf(out, "%-28s %6s %10s %10s %10s\n", "PURPOSE", "CALLS", "PROMPT", "OUTPUT", "TOTAL")
	for _, row := range summary {
		fmt.Fprintf(out, "%-28s %6d %10d %10d %10d\n", row.Purpose, row.Calls, row.PromptTokens, row.CompletionTokens, row.TotalTokens)
	}
	return nil
}
