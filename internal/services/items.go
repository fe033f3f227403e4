package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"akademiya/internal/models"
)

// ItemKind names the single-item collections that can be regenerated or extended.
type ItemKind string

const (
	ItemFlashcard    ItemKind = "flashcard"
	ItemQuizQuestion ItemKind = "quiz question"
)

// ErrCollectionFull is returned before any model call when a collection is at its cap.
var ErrCollectionFull = fmt.Errorf("collection already holds %d items", models.MaxCollectionItems)

// RequiredKeys lists the keys a generated item must carry.
func (k ItemKind) RequiredKeys() []string {
	if k == ItemQuizQuestion {
		return []string{"question", "options", "answer"}
	}
	return []string{"question", "answer"}
}

func (k ItemKind) example() string {
	if k == ItemQuizQuestion {
		return `{"question": "New Q", "options": {"a": "OptA", "b": "OptB", "c": "OptC"}, "answer": "a"}`
	}
	return `{"question": "New Q", "answer": "New A"}`
}

func (k ItemKind) title() string {
	if k == ItemQuizQuestion {
		return "Quiz Question"
	}
	return "Flashcard"
}

func (k ItemKind) valid() bool {
	return k == ItemFlashcard || k == ItemQuizQuestion
}

// ValidationError reports a parsed item that does not satisfy its kind.
type ValidationError struct {
	Kind      ItemKind
	Missing   []string
	Reason    string
	Candidate string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("generated %s is missing required keys (%s)", e.Kind, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("generated %s is malformed: %s", e.Kind, e.Reason)
}

// CanAdd reports whether a collection of size n has room for another item.
func CanAdd(n int) bool {
	return n < models.MaxCollectionItems
}

// Remaining returns how many items fit, bounded by the per-request maximum.
func Remaining(n int) int {
	room := models.MaxCollectionItems - n
	if room < 0 {
		room = 0
	}
	if room > models.MaxItemsPerRequest {
		room = models.MaxItemsPerRequest
	}
	return room
}

// ItemService asks the model for one replacement or additional item at a time.
type ItemService struct {
	ai  Completer
	log *zap.Logger
}

func NewItemService(ai Completer, log *zap.Logger) *ItemService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemService{ai: ai, log: log}
}

// RegenerateFlashcard returns a new flashcard distinct from card.
func (s *ItemService) RegenerateFlashcard(ctx context.Context, sessionID, source string, card models.Flashcard) (models.Flashcard, error) {
	obj, err := s.Regenerate(ctx, sessionID, ItemFlashcard, source, card.Question)
	if err != nil {
		return models.Flashcard{}, err
	}
	return toFlashcard(obj)
}

// RegenerateQuizQuestion returns a new quiz question distinct from question.
func (s *ItemService) RegenerateQuizQuestion(ctx context.Context, sessionID, source string, question models.QuizQuestion) (models.QuizQuestion, error) {
	obj, err := s.Regenerate(ctx, sessionID, ItemQuizQuestion, source, question.Question)
	if err != nil {
		return models.QuizQuestion{}, err
	}
	return toQuizQuestion(obj)
}

// AddFlashcard returns one flashcard that differs from every existing one.
func (s *ItemService) AddFlashcard(ctx context.Context, sessionID, source string, existing []models.Flashcard) (models.Flashcard, error) {
	if !CanAdd(len(existing)) {
		return models.Flashcard{}, ErrCollectionFull
	}
	questions := make([]string, len(existing))
	for i, card := range existing {
		questions[i] = card.Question
	}
	obj, err := s.Add(ctx, sessionID, ItemFlashcard, source, questions)
	if err != nil {
		return models.Flashcard{}, err
	}
	return toFlashcard(obj)
}

// AddQuizQuestion returns one quiz question that differs from every existing one.
func (s *ItemService) AddQuizQuestion(ctx context.Context, sessionID, source string, existing []models.QuizQuestion) (models.QuizQuestion, error) {
	if !CanAdd(len(existing)) {
		return models.QuizQuestion{}, ErrCollectionFull
	}
	questions := make([]string, len(existing))
	for i, q := range existing {
		questions[i] = q.Question
	}
	obj, err := s.Add(ctx, sessionID, ItemQuizQuestion, source, questions)
	if err != nil {
		return models.QuizQuestion{}, err
	}
	return toQuizQuestion(obj)
}

// Regenerate requests a replacement for the item whose question is original.
func (s *ItemService) Regenerate(ctx context.Context, sessionID string, kind ItemKind, source, original string) (map[string]any, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	return s.request(ctx, kind, CompletionRequest{
		SystemPrompt: buildRegeneratePrompt(kind, source, original),
		Temperature:  0.8,
		MaxTokens:    300,
		JSONMode:     true,
		Purpose:      "regenerate " + string(kind),
		SessionID:    sessionID,
	})
}

// Add requests one new item that avoids the existing questions.
func (s *ItemService) Add(ctx context.Context, sessionID string, kind ItemKind, source string, existing []string) (map[string]any, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	return s.request(ctx, kind, CompletionRequest{
		SystemPrompt: buildAddPrompt(kind, source, existing),
		Temperature:  0.7,
		MaxTokens:    300,
		JSONMode:     true,
		Purpose:      "add " + string(kind),
		SessionID:    sessionID,
	})
}

func (s *ItemService) request(ctx context.Context, kind ItemKind, req CompletionRequest) (map[string]any, error) {
	if s.ai == nil {
		return nil, ErrAIUnavailable
	}
	completion, err := s.ai.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	obj, err := ParseObject(completion.Text)
	if err != nil {
		s.log.Warn("item response not parseable", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	var missing []string
	for _, key := range kind.RequiredKeys() {
		if _, ok := obj[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		s.log.Warn("item response missing keys", zap.String("kind", string(kind)), zap.Strings("missing", missing))
		return nil, &ValidationError{Kind: kind, Missing: missing, Candidate: jsonCandidate(completion.Text)}
	}
	return obj, nil
}

func toFlashcard(obj map[string]any) (models.Flashcard, error) {
	card, err := decodeFlashcard(obj)
	if err != nil {
		return models.Flashcard{}, &ValidationError{Kind: ItemFlashcard, Reason: err.Error()}
	}
	return card, nil
}

func toQuizQuestion(obj map[string]any) (models.QuizQuestion, error) {
	question, err := decodeQuizQuestion(obj)
	if err != nil {
		return models.QuizQuestion{}, &ValidationError{Kind: ItemQuizQuestion, Reason: err.Error()}
	}
	return question, nil
}

// IsItemFailure reports whether err came from parsing or validating an item
// rather than from the completion call itself.
func IsItemFailure(err error) bool {
	var parseErr *ParseError
	var validationErr *ValidationError
	return errors.As(err, &parseErr) || errors.As(err, &validationErr)
}
