package services

import (
	"fmt"
	"strings"

	"akademiya/internal/models"
)

const generationPreamble = "You are an expert educational assistant. Your task is to process the provided text and generate educational content based on the user's request."

// exampleValues holds a literal, valid JSON example for every kind.
var exampleValues = map[models.ContentKind]string{
	models.KindSummary: `"Your concise summary here..."`,
	models.KindKeyPoints: `[
    {"point": "Key Concept 1", "description": "Brief explanation of concept 1..."},
    {"point": "Key Concept 2", "description": "Brief explanation of concept 2..."}
  ]`,
	models.KindFlashcards: `[
    {"question": "Q1", "answer": "A1"},
    {"question": "Q2", "answer": "A2"}
  ]`,
	models.KindQuiz: `[
    {"question": "Q1", "options": {"a": "OptA", "b": "OptB", "c": "OptC"}, "answer": "a"},
    {"question": "Q2", "options": {"a": "OptA", "b": "OptB", "c": "OptC"}, "answer": "b"}
  ]`,
}

// canonicalSpecs keeps the first spec of each known kind, in bundle order.
// Unknown kinds are dropped.
func canonicalSpecs(items []models.ContentSpec) []models.ContentSpec {
	first := make(map[models.ContentKind]models.ContentSpec, len(items))
	for _, item := range items {
		if _, known := exampleValues[item.Kind]; !known {
			continue
		}
		if _, seen := first[item.Kind]; !seen {
			first[item.Kind] = item
		}
	}
	out := make([]models.ContentSpec, 0, len(first))
	for _, kind := range models.ContentKinds {
		if spec, ok := first[kind]; ok {
			out = append(out, spec)
		}
	}
	return out
}

// RequestedKinds returns the known kinds of a request in bundle order.
func RequestedKinds(req models.ContentRequest) []models.ContentKind {
	specs := canonicalSpecs(req.Items)
	kinds := make([]models.ContentKind, len(specs))
	for i, spec := range specs {
		kinds[i] = spec.Kind
	}
	return kinds
}

func instructionFor(spec models.ContentSpec) string {
	count := spec.Count
	if count <= 0 {
		count = models.DefaultItemCount
	}
	switch spec.Kind {
	case models.KindSummary:
		switch models.SummaryStyle(spec.Style) {
		case models.SummaryNarrative:
			return "Provide a narrative-style summary that walks through the text in the order its ideas unfold."
		case models.SummaryAnalytical:
			return "Provide an analytical summary that examines the text's arguments, evidence and implications."
		default:
			return "Provide a concise single-paragraph summary of the text."
		}
	case models.KindKeyPoints:
		base := "Generate 3-7 key points, each with a brief description."
		switch models.NotesStyle(spec.Style) {
		case models.NotesSentence:
			return base + " Write them as complete sentences."
		case models.NotesConceptMap:
			return base + " Focus on relationships between concepts."
		default:
			return base + " Structure them as a hierarchical outline."
		}
	case models.KindFlashcards:
		return fmt.Sprintf("Generate %d flashcards. Each MUST be an object with 'question' (string) and 'answer' (string).", count)
	case models.KindQuiz:
		return fmt.Sprintf("Generate %d multiple-choice quiz questions. Each MUST be an object with 'question' (string), 'options' (object with string keys like 'a', 'b', 'c', etc. and string values), and 'answer' (string matching one of the option keys).", count)
	}
	return ""
}

// ExampleSchema renders the example JSON object for the given kinds. Its
// top-level keys are exactly the known kinds passed in.
func ExampleSchema(kinds []models.ContentKind) string {
	specs := make([]models.ContentSpec, len(kinds))
	for i, kind := range kinds {
		specs[i] = models.ContentSpec{Kind: kind}
	}
	specs = canonicalSpecs(specs)

	parts := make([]string, len(specs))
	for i, spec := range specs {
		parts[i] = fmt.Sprintf("  %q: %s", string(spec.Kind), exampleValues[spec.Kind])
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}"
}

// BuildGenerationPrompt assembles the system instruction for a bundle request.
func BuildGenerationPrompt(req models.ContentRequest) string {
	specs := canonicalSpecs(req.Items)
	kinds := make([]models.ContentKind, len(specs))

	var builder strings.Builder
	builder.WriteString(generationPreamble)
	builder.WriteString("\nPlease generate the following content types:\n")
	for i, spec := range specs {
		kinds[i] = spec.Kind
		builder.WriteString("- " + instructionFor(spec) + "\n")
	}

	builder.WriteString("\nYour output MUST be a single valid JSON object containing keys for ONLY the requested content types.\n")
	builder.WriteString("Example JSON structure:\n")
	builder.WriteString(ExampleSchema(kinds))
	builder.WriteString("\n\nEnsure the JSON is well-formed. Do NOT include any text or explanations outside of the main JSON object.")

	if focus := strings.TrimSpace(req.Focus); focus != "" {
		builder.WriteString("\n\n--- Focus Instruction ---\n")
		builder.WriteString("Please pay special attention to the following when generating the content: " + focus)
		builder.WriteString("\n-------------------------")
	}

	return builder.String()
}

// BuildChunkSummaryPrompt asks for a plain-text summary of one chunk.
func BuildChunkSummaryPrompt(index, total int) string {
	return fmt.Sprintf("You are an expert educational assistant. The user text is part %d of %d of a longer document. "+
		"Summarize this part in one concise paragraph of plain text. Do not refer to other parts.", index, total)
}

const (
	regenerateExcerptChars = 1000
	addExcerptChars        = 2000
)

func buildRegeneratePrompt(kind ItemKind, source string, original string) string {
	return fmt.Sprintf(`You are an educational assistant improving %[1]ss.

Original Context (Excerpt): %[2]s...
Original Question: %[3]s

Your task is to create a NEW and DIFFERENT %[1]s based on the provided context. The new item should cover a similar topic or concept if possible, but be distinct from the original question.

Your output MUST be a single JSON object with keys: %[4]s.
Example: %[5]s
Do NOT include any text outside the single JSON object.
`, kind, Excerpt(source, regenerateExcerptChars), original, strings.Join(kind.RequiredKeys(), ", "), kind.example())
}

func buildAddPrompt(kind ItemKind, source string, existing []string) string {
	var listed strings.Builder
	for _, question := range existing {
		listed.WriteString("- " + sanitizeForPrompt(question, 200) + "\n")
	}
	if listed.Len() == 0 {
		listed.WriteString("- (none yet)\n")
	}

	return fmt.Sprintf(`You are an educational assistant creating %[1]ss.

Context (Excerpt): %[2]s...

Existing %[3]s Questions (Do not repeat these exact questions or very similar ones):
%[4]s
Your task is to create ONE NEW, DISTINCT %[1]s based on the provided context that is different from the existing ones.

Your output MUST be a single JSON object with keys: %[5]s.
Example: %[6]s
Do NOT include any text outside the single JSON object.
`, kind, Excerpt(source, addExcerptChars), kind.title(), listed.String(), strings.Join(kind.RequiredKeys(), ", "), kind.example())
}
