package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"akademiya/internal/services"
	"akademiya/internal/session"
)

var errIndex = errors.New("item index out of range")

// writeServiceError maps service errors to HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		completionErr *services.CompletionError
		parseErr      *services.ParseError
		validationErr *services.ValidationError
	)
	switch {
	case errors.Is(err, services.ErrAIUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI features are disabled: OPENAI_API_KEY is not set")
	case errors.Is(err, session.ErrNoDocument):
		writeError(w, http.StatusConflict, "upload a document first")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusConflict, "session expired, please retry")
	case errors.Is(err, services.ErrCollectionFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoText):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errIndex), errors.Is(err, services.ErrCardIndex):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &completionErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     err.Error(),
			"missing":   validationErr.Missing,
			"candidate": validationErr.Candidate,
		})
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     err.Error(),
			"candidate": parseErr.Candidate,
		})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

var errBadCount = errors.New("requested count exceeds remaining capacity")

func isBadCount(err error) bool {
	return errors.Is(err, errBadCount)
}
