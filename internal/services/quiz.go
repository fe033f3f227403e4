package services

import (
	"strings"

	"akademiya/internal/models"
)

// GradeQuiz scores answers keyed by question index. Missing answers count as wrong.
func GradeQuiz(quiz []models.QuizQuestion, answers map[int]string) models.QuizResult {
	result := models.QuizResult{
		Total:   len(quiz),
		Results: make([]models.QuizAnswerResult, 0, len(quiz)),
	}
	for i, question := range quiz {
		correct := strings.ToLower(strings.TrimSpace(question.Answer))
		given := strings.ToLower(strings.TrimSpace(answers[i]))

		entry := models.QuizAnswerResult{
			Question:      question.Question,
			UserAnswer:    "Not Answered",
			CorrectAnswer: strings.ToUpper(correct),
		}
		if given != "" {
			entry.UserAnswer = strings.ToUpper(given)
			entry.Correct = given == correct
		}
		if entry.Correct {
			result.Score++
		}
		result.Results = append(result.Results, entry)
	}
	return result
}
