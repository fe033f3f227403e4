package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"akademiya/internal/models"
	"akademiya/internal/services"
)

// ErrNoDocument is returned when an operation needs extracted text and the
// session has none.
var ErrNoDocument = errors.New("no document uploaded")

// Session is the state of one interactive user. It is only touched through
// Store.Update and Store.View.
type Session struct {
	ID        string
	CreatedAt time.Time

	DocumentName  string
	DocumentHash  string
	ExtractedText string
	OriginalWords int
	Truncated     bool

	RawResponse   string
	Candidate     string
	ParseError    string
	ParsingFailed bool
	ContentTypes  []models.ContentKind

	Summary    *string
	KeyPoints  []models.KeyPoint
	Flashcards []models.Flashcard
	Quiz       []models.QuizQuestion
	Deck       models.StudyDeck
}

// HashDocument identifies uploaded bytes so a re-upload of the same file keeps state.
func HashDocument(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Session) HasDocument() bool {
	return s.ExtractedText != ""
}

// SameDocument reports whether hash matches the current upload.
func (s *Session) SameDocument(hash string) bool {
	return s.DocumentHash != "" && s.DocumentHash == hash
}

// ResetDocument forgets the upload and everything generated from it.
func (s *Session) ResetDocument() {
	s.DocumentName = ""
	s.DocumentHash = ""
	s.ExtractedText = ""
	s.OriginalWords = 0
	s.Truncated = false
	s.ClearResults()
}

// SetDocument replaces the upload. Generated content of a previous document is dropped.
func (s *Session) SetDocument(name, hash string, text services.Truncation) {
	s.ResetDocument()
	s.DocumentName = name
	s.DocumentHash = hash
	s.ExtractedText = text.Text
	s.OriginalWords = text.OriginalWords
	s.Truncated = text.Truncated
}

// ClearResults drops generated content but keeps the document.
func (s *Session) ClearResults() {
	s.RawResponse = ""
	s.Candidate = ""
	s.ParseError = ""
	s.ParsingFailed = false
	s.ContentTypes = nil
	s.Summary = nil
	s.KeyPoints = nil
	s.Flashcards = nil
	s.Quiz = nil
	s.Deck = models.StudyDeck{}
}

// ApplyResult stores a generation outcome. Previous results are always cleared,
// so a failed parse never leaves stale content behind.
func (s *Session) ApplyResult(requested []models.ContentKind, result *services.GenerationResult) {
	s.ClearResults()
	s.ContentTypes = append([]models.ContentKind(nil), requested...)
	s.RawResponse = result.Raw
	s.Candidate = result.Candidate
	s.ParseError = result.ParseError
	s.ParsingFailed = result.ParseFailed
	if result.Bundle == nil {
		return
	}
	s.Summary = result.Bundle.Summary
	s.KeyPoints = result.Bundle.KeyPoints
	s.Flashcards = result.Bundle.Flashcards
	s.Quiz = result.Bundle.Quiz
}

// Requested reports whether kind was part of the last generation request.
func (s *Session) Requested(kind models.ContentKind) bool {
	for _, k := range s.ContentTypes {
		if k == kind {
			return true
		}
	}
	return false
}

// Available reports whether kind has content to show.
func (s *Session) Available(kind models.ContentKind) bool {
	switch kind {
	case models.KindSummary:
		return s.Summary != nil && *s.Summary != ""
	case models.KindKeyPoints:
		return len(s.KeyPoints) > 0
	case models.KindFlashcards:
		return len(s.Flashcards) > 0
	case models.KindQuiz:
		return len(s.Quiz) > 0
	}
	return false
}
