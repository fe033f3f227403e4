package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("could not extract text from the pdf")

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ReadPDFBytes loads a document from disk for the CLI.
func (s *PDFService) ReadPDFBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

// ExtractText concatenates the plain text of every page.
func (s *PDFService) ExtractText(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", ErrNoText
	}
	// The pdf package panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		out.WriteString(pageText)
		out.WriteString("\n")
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", ErrNoText
	}
	return out.String(), nil
}

// PrepareText extracts, normalizes and truncates a document in one step.
func (s *PDFService) PrepareText(content []byte, maxWords int) (Truncation, error) {
	raw, err := s.ExtractText(content)
	if err != nil {
		return Truncation{}, err
	}
	cleaned := NormalizeWhitespace(raw)
	if cleaned == "" {
		return Truncation{}, ErrNoText
	}
	return TruncateWords(cleaned, maxWords), nil
}

// NormalizeWhitespace collapses every whitespace run into a single space.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncation describes the outcome of applying a word budget.
type Truncation struct {
	Text          string
	OriginalWords int
	Words         int
	Truncated     bool
}

// TruncateWords keeps at most maxWords words. Text under the budget is
// returned unchanged; longer text becomes its first maxWords words joined by
// single spaces. A non-positive budget disables truncation.
func TruncateWords(text string, maxWords int) Truncation {
	words := strings.Fields(text)
	if maxWords <= 0 || len(words) <= maxWords {
		return Truncation{Text: text, OriginalWords: len(words), Words: len(words)}
	}
	return Truncation{
		Text:          strings.Join(words[:maxWords], " "),
		OriginalWords: len(words),
		Words:         maxWords,
		Truncated:     true,
	}
}

// ChunkWords splits text into consecutive chunks of at most wordsPerChunk words.
func ChunkWords(text string, wordsPerChunk int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if wordsPerChunk <= 0 || len(words) <= wordsPerChunk {
		return []string{strings.Join(words, " ")}
	}

	chunks := make([]string, 0, (len(words)+wordsPerChunk-1)/wordsPerChunk)
	for start := 0; start < len(words); start += wordsPerChunk {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// Excerpt returns the first limit characters of text.
func Excerpt(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func sanitizeForPrompt(input string, limit int) string {
	collapsed := NormalizeWhitespace(input)
	if limit <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	if limit > 3 {
		return string(runes[:limit-3]) + "..."
	}
	return string(runes[:limit])
}
