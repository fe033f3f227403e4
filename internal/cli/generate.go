package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"akademiya/internal/models"
)

const cliSession = "cli"

var (
	genSummaryStyle string
	genNotesStyle   string
	genFlashcards   int
	genQuiz         int
	genFocus        string
	genFormat       string
	genNoSummary    bool
	genNoKeyPoints  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [pdf]",
	Short: "Generate study material for a PDF",
	Long: `Extracts the text of a PDF and generates a summary, key points,
flashcards and quiz questions in one request. Set --flashcards or --quiz
to 0 to skip them.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genSummaryStyle, "summary-style", string(models.SummaryConcise), "summary style: concise, narrative or analytical")
	generateCmd.Flags().StringVar(&genNotesStyle, "notes-style", string(models.NotesOutline), "key point style: outline, sentence or concept_map")
	generateCmd.Flags().IntVar(&genFlashcards, "flashcards", models.DefaultItemCount, "number of flashcards (0-10)")
	generateCmd.Flags().IntVar(&genQuiz, "quiz", models.DefaultItemCount, "number of quiz questions (0-10)")
	generateCmd.Flags().StringVar(&genFocus, "focus", "", "optional focus instruction")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "json", "output format: json or yaml")
	generateCmd.Flags().BoolVar(&genNoSummary, "no-summary", false, "skip the summary")
	generateCmd.Flags().BoolVar(&genNoKeyPoints, "no-key-points", false, "skip key points")
	rootCmd.AddCommand(generateCmd)
}

// buildRequest turns the flags into a content request.
func buildRequest() (models.ContentRequest, error) {
	req := models.ContentRequest{Focus: strings.TrimSpace(genFocus)}

	switch models.SummaryStyle(genSummaryStyle) {
	case models.SummaryConcise, models.SummaryNarrative, models.SummaryAnalytical:
	default:
		return req, fmt.Errorf("unknown summary style %q", genSummaryStyle)
	}
	switch models.NotesStyle(genNotesStyle) {
	case models.NotesOutline, models.NotesSentence, models.NotesConceptMap:
	default:
		return req, fmt.Errorf("unknown notes style %q", genNotesStyle)
	}
	for name, n := range map[string]int{"flashcards": genFlashcards, "quiz": genQuiz} {
		if n < 0 || n > models.MaxItemsPerRequest {
			return req, fmt.Errorf("--%s must be between 0 and %d", name, models.MaxItemsPerRequest)
		}
	}

	if !genNoSummary {
		req.Items = append(req.Items, models.ContentSpec{Kind: models.KindSummary, Style: genSummaryStyle})
	}
	if !genNoKeyPoints {
		req.Items = append(req.Items, models.ContentSpec{Kind: models.KindKeyPoints, Style: genNotesStyle})
	}
	if genFlashcards > 0 {
		req.Items = append(req.Items, models.ContentSpec{Kind: models.KindFlashcards, Count: genFlashcards})
	}
	if genQuiz > 0 {
		req.Items = append(req.Items, models.ContentSpec{Kind: models.KindQuiz, Count: genQuiz})
	}
	if len(req.Items) == 0 {
		return req, errors.New("nothing to generate")
	}
	return req, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	if genFormat != "json" && genFormat != "yaml" {
		return fmt.Errorf("unknown format %q", genFormat)
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
	text, err := a.PDF.PrepareText(content, a.Config.MaxWords)
	if err != nil {
		return fmt.Errorf("extract %s: %w", args[0], err)
	}
	if text.Truncated {
		cmd.PrintErrf("Note: text truncated to %d of %d words.\n", text.Words, text.OriginalWords)
	}

	result, err := a.Generation.Generate(cmd.Context(), cliSession, text.Text, req)
	if err != nil {
		return err
	}
	if result.ParseFailed {
		cmd.PrintErrln("Could not parse the model response:", result.ParseError)
		cmd.PrintErrln(result.Raw)
		return errors.New("model response was not valid JSON")
	}
	return writeOutput(cmd.OutOrStdout(), genFormat, result.Bundle)
}

func writeOutput(w io.Writer, format string, value any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

