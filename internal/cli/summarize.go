package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var summarizeChunkWords int

var summarizeCmd = &cobra.Command{
	Use:   "summarize [pdf]",
	Short: "Summarize a long PDF chunk by chunk",
	Long: `Splits the full text of a PDF into chunks of a fixed word budget and
summarizes each chunk in order. The word cap used by generate does not apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summarizeChunkWords, "chunk-words", "w", 1500, "words per chunk")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if summarizeChunkWords <= 0 {
		return fmt.Errorf("--chunk-words must be positive")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	content, err := a.PDF.ReadPDFBytes(args[0])
	if err != nil {
		return err
	}
	text, err := a.PDF.PrepareText(content, 0)
	if err != nil {
		return fmt.Errorf("extract %s: %w", args[0], err)
	}

	parts, err := a.Generation.SummarizeChunks(cmd.Context(), cliSession, text.Text, summarizeChunkWords)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, "\n\n"))
	return err
}
