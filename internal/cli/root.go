// Package cli implements the akademiya command line.
package cli

import (
	"github.com/spf13/cobra"

	"akademiya/internal/app"
	"akademiya/internal/config"
)

// newApp builds the application container. Tests replace it.
var newApp = func() (*app.App, error) {
	return app.New(config.Load())
}

var rootCmd = &cobra.Command{
	Use:   "akademiya",
	Short: "Turn PDF documents into study material",
	Long: `Akademiya extracts the text of a PDF and asks a language model for a
summary, key points, flashcards and a multiple-choice quiz.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
