package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"akademiya/internal/models"
	"akademiya/internal/services"
	"akademiya/internal/session"
)

type addRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=10"`
}

// addOutcome reports a batch addition that stops at the first failure.
type addOutcome struct {
	Requested int    `json:"requested"`
	Added     int    `json:"added"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error,omitempty"`
}

// addBatch calls add up to count times and keeps whatever succeeded. When the
// very first call fails, its error is returned so the caller can map it.
func addBatch(count int, size func() int, add func() error) (addOutcome, error) {
	out := addOutcome{Requested: count}
	if !services.CanAdd(size()) {
		return out, services.ErrCollectionFull
	}
	if count > services.Remaining(size()) {
		return out, fmt.Errorf("%w: only %d more items fit", errBadCount, services.Remaining(size()))
	}
	for i := 0; i < count; i++ {
		if err := add(); err != nil {
			if out.Added == 0 {
				return out, err
			}
			out.Error = err.Error()
			break
		}
		out.Added++
	}
	out.Total = size()
	out.Remaining = services.Remaining(size())
	return out, nil
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		var resp map[string]any
		err := s.deps.Store.View(sessionID, func(sess *session.Session) {
			resp = map[string]any{
				"requested":  sess.Requested(models.KindFlashcards),
				"flashcards": nonNil(sess.Flashcards),
				"remaining":  services.Remaining(len(sess.Flashcards)),
				"canAdd":     services.CanAdd(len(sess.Flashcards)),
			}
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		s.handleAddFlashcards(w, r, sessionID)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAddFlashcards(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload addRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}
	count := max(payload.Count, 1)

	var outcome addOutcome
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		var err error
		outcome, err = addBatch(count,
			func() int { return len(sess.Flashcards) },
			func() error {
				card, err := s.deps.Items.AddFlashcard(r.Context(), sessionID, sess.ExtractedText, sess.Flashcards)
				if err != nil {
					return err
				}
				sess.Flashcards = append(sess.Flashcards, card)
				return nil
			})
		s.deps.Study.Sync(&sess.Deck, len(sess.Flashcards), s.now())
		return err
	})
	if err != nil {
		s.writeAddError(w, err)
		return
	}
	if outcome.Error != "" {
		s.log.Warn("flashcard batch stopped early", zap.Int("added", outcome.Added), zap.String("error", outcome.Error))
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleFlashcardActions(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	index, action, ok := indexAction(r.URL.Path, "/api/flashcards/")
	if !ok || action != "regenerate" {
		http.NotFound(w, r)
		return
	}

	var card models.Flashcard
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		if index < 0 || index >= len(sess.Flashcards) {
			return errIndex
		}
		replacement, err := s.deps.Items.RegenerateFlashcard(r.Context(), sessionID, sess.ExtractedText, sess.Flashcards[index])
		if err != nil {
			return err
		}
		sess.Flashcards[index] = replacement
		card = replacement
		s.deps.Study.Sync(&sess.Deck, len(sess.Flashcards), s.now())
		return s.deps.Study.Reset(&sess.Deck, index, s.now())
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": index, "flashcard": card})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		var resp map[string]any
		err := s.deps.Store.View(sessionID, func(sess *session.Session) {
			questions := make([]map[string]any, len(sess.Quiz))
			for i, q := range sess.Quiz {
				questions[i] = map[string]any{
					"question":   q.Question,
					"options":    q.Options,
					"optionKeys": q.OptionKeys(),
				}
			}
			resp = map[string]any{
				"requested": sess.Requested(models.KindQuiz),
				"quiz":      questions,
				"remaining": services.Remaining(len(sess.Quiz)),
				"canAdd":    services.CanAdd(len(sess.Quiz)),
			}
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		s.handleAddQuizQuestions(w, r, sessionID)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAddQuizQuestions(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload addRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}
	count := max(payload.Count, 1)

	var outcome addOutcome
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		var err error
		outcome, err = addBatch(count,
			func() int { return len(sess.Quiz) },
			func() error {
				q, err := s.deps.Items.AddQuizQuestion(r.Context(), sessionID, sess.ExtractedText, sess.Quiz)
				if err != nil {
					return err
				}
				sess.Quiz = append(sess.Quiz, q)
				return nil
			})
		return err
	})
	if err != nil {
		s.writeAddError(w, err)
		return
	}
	if outcome.Error != "" {
		s.log.Warn("quiz batch stopped early", zap.Int("added", outcome.Added), zap.String("error", outcome.Error))
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleQuizActions(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	index, action, ok := indexAction(r.URL.Path, "/api/quiz/")
	if !ok || action != "regenerate" {
		http.NotFound(w, r)
		return
	}

	var question models.QuizQuestion
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		if index < 0 || index >= len(sess.Quiz) {
			return errIndex
		}
		replacement, err := s.deps.Items.RegenerateQuizQuestion(r.Context(), sessionID, sess.ExtractedText, sess.Quiz[index])
		if err != nil {
			return err
		}
		sess.Quiz[index] = replacement
		question = replacement
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":      index,
		"question":   question.Question,
		"options":    question.Options,
		"optionKeys": question.OptionKeys(),
	})
}

type quizSubmitRequest struct {
	Answers map[int]string `json:"answers" validate:"dive,omitempty,max=8"`
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload quizSubmitRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}

	var result models.QuizResult
	err := s.deps.Store.View(sessionID, func(sess *session.Session) {
		result = services.GradeQuiz(sess.Quiz, payload.Answers)
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if result.Total == 0 {
		writeError(w, http.StatusConflict, "no quiz questions to grade")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeAddError(w http.ResponseWriter, err error) {
	if isBadCount(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeServiceError(w, err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
