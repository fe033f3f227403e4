package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"akademiya/internal/models"
)

func TestGradeQuiz(t *testing.T) {
	quiz := []models.QuizQuestion{
		{Question: "Q1", Options: map[string]string{"a": "x", "b": "y"}, Answer: "a"},
		{Question: "Q2", Options: map[string]string{"a": "x", "b": "y"}, Answer: "b"},
		{Question: "Q3", Options: map[string]string{"a": "x", "b": "y"}, Answer: "a"},
	}

	result := GradeQuiz(quiz, map[int]string{0: "A", 1: "a"})

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, []models.QuizAnswerResult{
		{Question: "Q1", UserAnswer: "A", CorrectAnswer: "A", Correct: true},
		{Question: "Q2", UserAnswer: "A", CorrectAnswer: "B", Correct: false},
		{Question: "Q3", UserAnswer: "Not Answered", CorrectAnswer: "A", Correct: false},
	}, result.Results)
}

func TestGradeQuizEmpty(t *testing.T) {
	result := GradeQuiz(nil, nil)
	assert.Zero(t, result.Score)
	assert.Zero(t, result.Total)
	assert.Empty(t, result.Results)
}
