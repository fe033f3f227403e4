package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiya/internal/models"
)

func TestParseObject(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		obj, err := ParseObject(`{"summary": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, "x", obj["summary"])
	})

	t.Run("fenced block wins", func(t *testing.T) {
		raw := "Sure!\n```JSON\n{\"summary\": \"fenced\"}\n```\nAlso {\"summary\": \"other\"}"
		obj, err := ParseObject(raw)
		require.NoError(t, err)
		assert.Equal(t, "fenced", obj["summary"])
	})

	t.Run("prose around braces", func(t *testing.T) {
		obj, err := ParseObject(`Here you go: {"summary": "x"} thanks!`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"summary": "x"}, obj)
	})

	t.Run("fence inside a string value", func(t *testing.T) {
		raw := "```json\n{\"question\": \"What does ```go``` mark?\", \"answer\": \"A Go code block\"}\n```"
		obj, err := ParseObject(raw)
		require.NoError(t, err)
		assert.Equal(t, "What does ```go``` mark?", obj["question"])
		assert.Equal(t, "A Go code block", obj["answer"])
	})

	t.Run("other fence label falls back to braces", func(t *testing.T) {
		obj, err := ParseObject("```jsonc\n{\"summary\": \"x\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "x", obj["summary"])
	})

	t.Run("crlf fence", func(t *testing.T) {
		obj, err := ParseObject("```json\r\n{\"summary\": \"x\"}\r\n```")
		require.NoError(t, err)
		assert.Equal(t, "x", obj["summary"])
	})

	t.Run("not json keeps candidate", func(t *testing.T) {
		_, err := ParseObject("not json at all")
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "not json at all", parseErr.Candidate)
	})

	t.Run("list is rejected", func(t *testing.T) {
		_, err := ParseObject(`[1, 2, 3]`)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.ErrorIs(t, err, errNotObject)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := ParseObject("  \n")
		assert.ErrorIs(t, err, errEmptyResponse)
	})
}

func TestParseObjectIsIdempotent(t *testing.T) {
	raw := "```json\n{\"flashcards\": [{\"question\": \"Q\", \"answer\": \"A\"}]}\n```"
	first, err := ParseObject(raw)
	require.NoError(t, err)
	second, err := ParseObject(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeBundle(t *testing.T) {
	obj, err := ParseObject(`{
		"summary": "Short.",
		"key_points": ["plain", {"point": "P", "description": "D"}],
		"flashcards": [{"question": " Q1 ", "answer": "A1"}],
		"quiz": [{"question": "Q", "options": {"A": "one", "b": "two"}, "answer": "B"}],
		"extra": true
	}`)
	require.NoError(t, err)

	bundle, err := DecodeBundle(obj, models.ContentKinds)
	require.NoError(t, err)

	require.NotNil(t, bundle.Summary)
	assert.Equal(t, "Short.", *bundle.Summary)
	assert.Equal(t, []models.KeyPoint{
		models.SimpleKeyPoint("plain"),
		models.DescribedKeyPoint("P", "D"),
	}, bundle.KeyPoints)
	assert.Equal(t, []models.Flashcard{{Question: "Q1", Answer: "A1"}}, bundle.Flashcards)
	require.Len(t, bundle.Quiz, 1)
	assert.Equal(t, map[string]string{"a": "one", "b": "two"}, bundle.Quiz[0].Options)
	assert.Equal(t, "b", bundle.Quiz[0].Answer)
	assert.Equal(t, "two", bundle.Quiz[0].CorrectText())
}

func TestDecodeBundleKeepsRequestedKindsOnly(t *testing.T) {
	obj := map[string]any{
		"summary":    "s",
		"flashcards": []any{map[string]any{"question": "Q", "answer": "A"}},
	}
	bundle, err := DecodeBundle(obj, []models.ContentKind{models.KindFlashcards, models.KindQuiz})
	require.NoError(t, err)
	assert.Nil(t, bundle.Summary)
	assert.Len(t, bundle.Flashcards, 1)
	assert.Empty(t, bundle.Quiz)
	assert.Equal(t, []models.ContentKind{models.KindFlashcards}, bundle.Generated())
}

func TestDecodeBundleNullIsAbsent(t *testing.T) {
	bundle, err := DecodeBundle(map[string]any{"summary": nil}, []models.ContentKind{models.KindSummary})
	require.NoError(t, err)
	assert.Nil(t, bundle.Summary)
}

func TestDecodeBundleShapeErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"summary not string":   {"summary": 42.0},
		"flashcards not list":  {"flashcards": "Q: A"},
		"flashcard no answer":  {"flashcards": []any{map[string]any{"question": "Q"}}},
		"quiz options list":    {"quiz": []any{map[string]any{"question": "Q", "options": []any{"x"}, "answer": "a"}}},
		"key point wrong type": {"key_points": []any{3.0}},
	}
	for name, obj := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBundle(obj, models.ContentKinds)
			var shapeErr *ShapeError
			assert.True(t, errors.As(err, &shapeErr), "got %v", err)
		})
	}
}
