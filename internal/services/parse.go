package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"akademiya/internal/models"
)

// ParseError reports a response that does not hold a JSON object. Candidate is
// the text the parser attempted, kept for display.
type ParseError struct {
	Candidate string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errEmptyResponse = errors.New("received empty response")
	errNotObject     = errors.New("parsed data is not a JSON object")

	jsonFence = regexp.MustCompile("(?is)```json[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")
)

// jsonCandidate picks the substring most likely to hold the JSON object: a
// ```json fence, else first '{' through last '}', else the whole text.
func jsonCandidate(content string) string {
	if match := jsonFence.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1])
	}

	if startIdx := strings.Index(content, "{"); startIdx != -1 {
		if endIdx := strings.LastIndex(content, "}"); endIdx > startIdx {
			return content[startIdx : endIdx+1]
		}
	}

	return strings.TrimSpace(content)
}

// ParseObject extracts a single JSON object from a model reply.
func ParseObject(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Candidate: raw, Err: errEmptyResponse}
	}

	candidate := jsonCandidate(raw)
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, &ParseError{Candidate: candidate, Err: fmt.Errorf("decode json: %w", err)}
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ParseError{Candidate: candidate, Err: errNotObject}
	}
	return obj, nil
}

// ShapeError reports a bundle key whose value has the wrong shape.
type ShapeError struct {
	Key    string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// DecodeBundle converts a parsed object into a typed bundle, keeping only the
// requested kinds. A requested key that is present with the wrong shape makes
// the whole bundle unusable.
func DecodeBundle(obj map[string]any, kinds []models.ContentKind) (*models.Bundle, error) {
	bundle := &models.Bundle{}
	for _, kind := range kinds {
		value, ok := obj[string(kind)]
		if !ok || value == nil {
			continue
		}
		var err error
		switch kind {
		case models.KindSummary:
			text, isString := value.(string)
			if !isString {
				err = &ShapeError{Key: string(kind), Reason: "expected a string"}
				break
			}
			bundle.Summary = &text
		case models.KindKeyPoints:
			bundle.KeyPoints, err = decodeKeyPoints(value)
		case models.KindFlashcards:
			bundle.Flashcards, err = decodeList(value, string(kind), decodeFlashcard)
		case models.KindQuiz:
			bundle.Quiz, err = decodeList(value, string(kind), decodeQuizQuestion)
		}
		if err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func decodeKeyPoints(value any) ([]models.KeyPoint, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, &ShapeError{Key: string(models.KindKeyPoints), Reason: "expected a list"}
	}
	points := make([]models.KeyPoint, 0, len(list))
	for i, entry := range list {
		switch v := entry.(type) {
		case string:
			points = append(points, models.SimpleKeyPoint(v))
		case map[string]any:
			point, okPoint := v["point"].(string)
			if !okPoint {
				return nil, &ShapeError{Key: fmt.Sprintf("key_points[%d]", i), Reason: "missing string 'point'"}
			}
			description, _ := v["description"].(string)
			points = append(points, models.DescribedKeyPoint(point, description))
		default:
			return nil, &ShapeError{Key: fmt.Sprintf("key_points[%d]", i), Reason: "expected a string or an object"}
		}
	}
	return points, nil
}

func decodeList[T any](value any, key string, decode func(map[string]any) (T, error)) ([]T, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, &ShapeError{Key: key, Reason: "expected a list"}
	}
	out := make([]T, 0, len(list))
	for i, entry := range list {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			return nil, &ShapeError{Key: fmt.Sprintf("%s[%d]", key, i), Reason: "expected an object"}
		}
		item, err := decode(obj)
		if err != nil {
			return nil, &ShapeError{Key: fmt.Sprintf("%s[%d]", key, i), Reason: err.Error()}
		}
		out = append(out, item)
	}
	return out, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	value, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%q must be a string", key)
	}
	return strings.TrimSpace(text), nil
}

func decodeFlashcard(obj map[string]any) (models.Flashcard, error) {
	question, err := stringField(obj, "question")
	if err != nil {
		return models.Flashcard{}, err
	}
	answer, err := stringField(obj, "answer")
	if err != nil {
		return models.Flashcard{}, err
	}
	return models.Flashcard{Question: question, Answer: answer}, nil
}

func decodeQuizQuestion(obj map[string]any) (models.QuizQuestion, error) {
	question, err := stringField(obj, "question")
	if err != nil {
		return models.QuizQuestion{}, err
	}
	answer, err := stringField(obj, "answer")
	if err != nil {
		return models.QuizQuestion{}, err
	}
	rawOptions, ok := obj["options"].(map[string]any)
	if !ok {
		return models.QuizQuestion{}, errors.New(`"options" must be an object`)
	}
	options := make(map[string]string, len(rawOptions))
	for key, value := range rawOptions {
		text, isString := value.(string)
		if !isString {
			return models.QuizQuestion{}, fmt.Errorf("option %q must be a string", key)
		}
		options[strings.ToLower(strings.TrimSpace(key))] = text
	}
	return models.QuizQuestion{
		Question: question,
		Options:  options,
		Answer:   strings.ToLower(answer),
	}, nil
}
