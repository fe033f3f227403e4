package api

import (
	"net/http"
	"strings"

	"akademiya/internal/models"
	"akademiya/internal/session"
)

type generateRequest struct {
	ContentTypes   []string `json:"contentTypes" validate:"required,min=1,dive,oneof=summary key_points flashcards quiz"`
	SummaryStyle   string   `json:"summaryStyle" validate:"omitempty,oneof=concise narrative analytical"`
	NotesStyle     string   `json:"notesStyle" validate:"omitempty,oneof=outline sentence concept_map"`
	FlashcardCount int      `json:"flashcardCount" validate:"omitempty,min=1,max=10"`
	QuizCount      int      `json:"quizCount" validate:"omitempty,min=1,max=10"`
	Focus          string   `json:"focus" validate:"max=2000"`
}

func (req generateRequest) toContentRequest() models.ContentRequest {
	out := models.ContentRequest{Focus: strings.TrimSpace(req.Focus)}
	for _, raw := range req.ContentTypes {
		spec := models.ContentSpec{Kind: models.ContentKind(raw)}
		switch spec.Kind {
		case models.KindSummary:
			spec.Style = req.SummaryStyle
			if spec.Style == "" {
				spec.Style = string(models.SummaryConcise)
			}
		case models.KindKeyPoints:
			spec.Style = req.NotesStyle
			if spec.Style == "" {
				spec.Style = string(models.NotesOutline)
			}
		case models.KindFlashcards:
			spec.Count = countOrDefault(req.FlashcardCount)
		case models.KindQuiz:
			spec.Count = countOrDefault(req.QuizCount)
		}
		out.Items = append(out.Items, spec)
	}
	return out
}

func countOrDefault(n int) int {
	if n <= 0 {
		return models.DefaultItemCount
	}
	return n
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload generateRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}
	req := payload.toContentRequest()

	var resp map[string]any
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		result, err := s.deps.Generation.Generate(r.Context(), sessionID, sess.ExtractedText, req)
		if err != nil {
			return err
		}
		sess.ApplyResult(req.Kinds(), result)
		s.deps.Study.Sync(&sess.Deck, len(sess.Flashcards), s.now())
		resp = resultsPayload(sess)
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var resp map[string]any
	err := s.deps.Store.View(sessionID, func(sess *session.Session) {
		resp = resultsPayload(sess)
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// resultsPayload is the results page: what was asked for, what came back, and
// the raw reply when parsing failed.
func resultsPayload(sess *session.Session) map[string]any {
	requested := make([]string, len(sess.ContentTypes))
	for i, kind := range sess.ContentTypes {
		requested[i] = string(kind)
	}
	available := make(map[string]bool, len(models.ContentKinds))
	for _, kind := range models.ContentKinds {
		available[string(kind)] = sess.Available(kind)
	}

	out := map[string]any{
		"document":      sess.DocumentName,
		"requested":     requested,
		"available":     available,
		"parsingFailed": sess.ParsingFailed,
		"summary":       sess.Summary,
		"keyPoints":     sess.KeyPoints,
		"flashcards":    len(sess.Flashcards),
		"quiz":          len(sess.Quiz),
	}
	if sess.KeyPoints == nil {
		out["keyPoints"] = []models.KeyPoint{}
	}
	if sess.ParsingFailed {
		out["raw"] = sess.RawResponse
		out["candidate"] = sess.Candidate
		out["parseError"] = sess.ParseError
	}
	return out
}

type chunkedSummaryRequest struct {
	ChunkWords int `json:"chunkWords" validate:"omitempty,min=100,max=7500"`
}

const defaultChunkWords = 1500

func (s *Server) handleChunkedSummary(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload chunkedSummaryRequest
	if !s.decodeBody(w, r, &payload) {
		return
	}
	if payload.ChunkWords == 0 {
		payload.ChunkWords = defaultChunkWords
	}

	var parts []string
	err := s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if !sess.HasDocument() {
			return session.ErrNoDocument
		}
		var err error
		parts, err = s.deps.Generation.SummarizeChunks(r.Context(), sessionID, sess.ExtractedText, payload.ChunkWords)
		return err
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chunks":  parts,
		"summary": strings.Join(parts, "\n\n"),
	})
}
