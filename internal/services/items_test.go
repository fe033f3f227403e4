package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiya/internal/models"
)

func TestRegenerateFlashcard(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"question": "New Q", "answer": "New A"}`}}
	svc := NewItemService(fake, nil)

	card, err := svc.RegenerateFlashcard(context.Background(), "s", "source text", models.Flashcard{Question: "Old Q", Answer: "Old A"})
	require.NoError(t, err)
	assert.Equal(t, models.Flashcard{Question: "New Q", Answer: "New A"}, card)

	require.Equal(t, 1, fake.calls())
	req := fake.requests[0]
	assert.InDelta(t, 0.8, req.Temperature, 0.0001)
	assert.Equal(t, 300, req.MaxTokens)
	assert.True(t, req.JSONMode)
	assert.Contains(t, req.SystemPrompt, "Original Question: Old Q")
}

func TestRegenerateQuizQuestionMissingAnswer(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"question": "Q", "options": {"a": "x", "b": "y"}}`}}
	svc := NewItemService(fake, nil)

	original := models.QuizQuestion{Question: "Old", Options: map[string]string{"a": "1"}, Answer: "a"}
	_, err := svc.RegenerateQuizQuestion(context.Background(), "s", "src", original)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"answer"}, validationErr.Missing)
	assert.Contains(t, validationErr.Candidate, `"options"`)
	assert.True(t, IsItemFailure(err))
	assert.Equal(t, "Old", original.Question)
}

func TestRegenerateParseFailureIsDistinct(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"sorry, I cannot do that"}}
	svc := NewItemService(fake, nil)

	_, err := svc.RegenerateFlashcard(context.Background(), "s", "src", models.Flashcard{Question: "Q"})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
	assert.True(t, IsItemFailure(err))
}

func TestItemCompletionErrorIsNotItemFailure(t *testing.T) {
	fake := &fakeCompleter{err: &CompletionError{Err: errors.New("rate limited")}}
	svc := NewItemService(fake, nil)

	_, err := svc.AddFlashcard(context.Background(), "s", "src", nil)
	require.Error(t, err)
	assert.False(t, IsItemFailure(err))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAddQuizQuestion(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"question": "Q3", "options": {"a": "x", "b": "y"}, "answer": "A"}`}}
	svc := NewItemService(fake, nil)

	existing := []models.QuizQuestion{{Question: "Q1"}, {Question: "Q2"}}
	q, err := svc.AddQuizQuestion(context.Background(), "s", "src", existing)
	require.NoError(t, err)
	assert.Equal(t, "Q3", q.Question)
	assert.Equal(t, "a", q.Answer)

	req := fake.requests[0]
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)
	assert.Contains(t, req.SystemPrompt, "- Q1\n- Q2\n")
}

func TestAddRejectedAtCap(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"question": "Q", "answer": "A"}`}}
	svc := NewItemService(fake, nil)

	full := make([]models.Flashcard, models.MaxCollectionItems)
	for i := range full {
		full[i] = models.Flashcard{Question: fmt.Sprintf("Q%d", i), Answer: "A"}
	}
	_, err := svc.AddFlashcard(context.Background(), "s", "src", full)
	assert.ErrorIs(t, err, ErrCollectionFull)
	assert.Zero(t, fake.calls())
}

func TestCapacityHelpers(t *testing.T) {
	assert.True(t, CanAdd(0))
	assert.True(t, CanAdd(14))
	assert.False(t, CanAdd(15))

	assert.Equal(t, 10, Remaining(0))
	assert.Equal(t, 10, Remaining(5))
	assert.Equal(t, 3, Remaining(12))
	assert.Equal(t, 0, Remaining(15))
	assert.Equal(t, 0, Remaining(20))
}

func TestItemServiceWithoutAI(t *testing.T) {
	svc := NewItemService(nil, nil)
	_, err := svc.RegenerateFlashcard(context.Background(), "s", "src", models.Flashcard{})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestValidationCandidateMatchesParsedText(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"Here it is: {\"question\": \"Q\"} hope it helps"}}
	svc := NewItemService(fake, nil)

	_, err := svc.AddFlashcard(context.Background(), "s", "src", nil)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, `{"question": "Q"}`, validationErr.Candidate)
}
