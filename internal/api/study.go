package api

import (
	"errors"
	"net/http"

	"akademiya/internal/services"
	"akademiya/internal/session"
)

func (s *Server) handleStudyNext(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var resp map[string]any
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		now := s.now()
		s.deps.Study.Sync(&sess.Deck, len(sess.Flashcards), now)
		index, err := s.deps.Study.Next(&sess.Deck, now)
		if err != nil {
			return err
		}
		card := sess.Flashcards[index]
		sched := sess.Deck.Cards[index]
		resp = map[string]any{
			"card": map[string]any{
				"index":    index,
				"question": card.Question,
				"answer":   card.Answer,
				"due":      sched.Due.Format(timeLayout),
				"state":    sched.State,
				"reps":     sched.Reps,
			},
		}
		return nil
	})
	if errors.Is(err, services.ErrNoDueCards) {
		writeJSON(w, http.StatusOK, map[string]any{
			"card":    nil,
			"message": "No cards due. Come back later!",
		})
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type reviewRequest struct {
	Rating string `json:"rating" validate:"required,oneof=again hard good easy"`
}

func (s *Server) handleStudyActions(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	index, action, ok := indexAction(r.URL.Path, "/api/study/")
	if !ok || action != "review" {
		http.NotFound(w, r)
		return
	}

	var payload reviewRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}
	rating, err := services.ParseRating(payload.Rating)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp map[string]any
	err = s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		now := s.now()
		s.deps.Study.Sync(&sess.Deck, len(sess.Flashcards), now)
		logEntry, err := s.deps.Study.Review(&sess.Deck, index, rating, now)
		if err != nil {
			return err
		}
		card := sess.Deck.Cards[index]
		resp = map[string]any{
			"card": map[string]any{
				"index": index,
				"due":   card.Due.Format(timeLayout),
				"state": card.State,
			},
			"log": map[string]any{
				"rating":  logEntry.Rating,
				"due_in":  logEntry.ScheduledDays,
				"updated": logEntry.ReviewedAt.Format(timeLayout),
			},
		}
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
