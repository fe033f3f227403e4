package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiya/internal/models"
)

func summaryAndCards() models.ContentRequest {
	return models.ContentRequest{Items: []models.ContentSpec{
		{Kind: models.KindSummary, Style: string(models.SummaryConcise)},
		{Kind: models.KindFlashcards, Count: 2},
	}}
}

func TestGenerate(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"```json\n" + `{
		"summary": "A short summary.",
		"flashcards": [{"question": "Q1", "answer": "A1"}, {"question": "Q2", "answer": "A2"}]
	}` + "\n```"}}
	svc := NewGenerationService(fake, 0.7, nil)

	result, err := svc.Generate(context.Background(), "s", "document text", summaryAndCards())
	require.NoError(t, err)
	require.False(t, result.ParseFailed)
	require.NotNil(t, result.Bundle)
	assert.Equal(t, "A short summary.", *result.Bundle.Summary)
	assert.Len(t, result.Bundle.Flashcards, 2)
	assert.Contains(t, result.Raw, "```json")

	req := fake.requests[0]
	assert.Equal(t, "document text", req.UserText)
	assert.True(t, req.JSONMode)
	assert.Equal(t, "generate", req.Purpose)
}

func TestGenerateParseFailureKeepsRaw(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"not json at all"}}
	svc := NewGenerationService(fake, 0.7, nil)

	result, err := svc.Generate(context.Background(), "s", "text", summaryAndCards())
	require.NoError(t, err)
	assert.True(t, result.ParseFailed)
	assert.Nil(t, result.Bundle)
	assert.Equal(t, "not json at all", result.Raw)
	assert.Equal(t, "not json at all", result.Candidate)
	assert.NotEmpty(t, result.ParseError)
}

func TestGenerateShapeFailure(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"summary": "ok", "flashcards": "none"}`}}
	svc := NewGenerationService(fake, 0.7, nil)

	result, err := svc.Generate(context.Background(), "s", "text", summaryAndCards())
	require.NoError(t, err)
	assert.True(t, result.ParseFailed)
	assert.Contains(t, result.ParseError, "flashcards")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("no text", func(t *testing.T) {
		svc := NewGenerationService(&fakeCompleter{}, 0.7, nil)
		_, err := svc.Generate(context.Background(), "s", "  ", summaryAndCards())
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("nothing requested", func(t *testing.T) {
		fake := &fakeCompleter{}
		svc := NewGenerationService(fake, 0.7, nil)
		_, err := svc.Generate(context.Background(), "s", "text", models.ContentRequest{})
		assert.Error(t, err)
		assert.Zero(t, fake.calls())
	})

	t.Run("completion failure", func(t *testing.T) {
		fake := &fakeCompleter{err: &CompletionError{Err: errors.New("boom")}}
		svc := NewGenerationService(fake, 0.7, nil)
		_, err := svc.Generate(context.Background(), "s", "text", summaryAndCards())
		var completionErr *CompletionError
		assert.True(t, errors.As(err, &completionErr))
	})

	t.Run("no ai", func(t *testing.T) {
		svc := NewGenerationService(nil, 0.7, nil)
		_, err := svc.Generate(context.Background(), "s", "text", summaryAndCards())
		assert.ErrorIs(t, err, ErrAIUnavailable)
	})
}

func TestSummarizeChunks(t *testing.T) {
	fake := &fakeCompleter{replies: []string{" first part ", "second part"}}
	svc := NewGenerationService(fake, 0.5, nil)

	parts, err := svc.SummarizeChunks(context.Background(), "s", "a b c d e", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"first part", "second part"}, parts)
	require.Equal(t, 2, fake.calls())
	assert.Equal(t, "a b c", fake.requests[0].UserText)
	assert.Equal(t, "d e", fake.requests[1].UserText)
	assert.Contains(t, fake.requests[1].SystemPrompt, "part 2 of 2")
}
