package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"akademiya/internal/session"
)

type documentResponse struct {
	Name          string `json:"name"`
	Words         int    `json:"words"`
	OriginalWords int    `json:"originalWords"`
	Truncated     bool   `json:"truncated"`
	MaxWords      int    `json:"maxWords"`
	Unchanged     bool   `json:"unchanged"`
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if s.deps.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}
	hash := session.HashDocument(content)

	var resp documentResponse
	err = s.deps.Store.Update(sessionID, func(sess *session.Session) error {
		if sess.SameDocument(hash) {
			resp = documentResponse{
				Name:          sess.DocumentName,
				Words:         len(strings.Fields(sess.ExtractedText)),
				OriginalWords: sess.OriginalWords,
				Truncated:     sess.Truncated,
				MaxWords:      s.deps.MaxWords,
				Unchanged:     true,
			}
			return nil
		}

		prepared, err := s.deps.PDF.PrepareText(content, s.deps.MaxWords)
		if err != nil {
			sess.ResetDocument()
			return err
		}
		sess.SetDocument(header.Filename, hash, prepared)
		resp = documentResponse{
			Name:          header.Filename,
			Words:         prepared.Words,
			OriginalWords: prepared.OriginalWords,
			Truncated:     prepared.Truncated,
			MaxWords:      s.deps.MaxWords,
		}
		return nil
	})
	if err != nil {
		s.log.Warn("document extraction failed", zap.String("name", header.Filename), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "could not extract text from the PDF: "+err.Error())
		return
	}

	s.log.Info("document loaded",
		zap.String("name", resp.Name),
		zap.Int("words", resp.Words),
		zap.Bool("truncated", resp.Truncated),
		zap.Bool("unchanged", resp.Unchanged),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var payload map[string]any
	err := s.deps.Store.View(sessionID, func(sess *session.Session) {
		if !sess.HasDocument() {
			return
		}
		payload = map[string]any{
			"name":          sess.DocumentName,
			"text":          sess.ExtractedText,
			"originalWords": sess.OriginalWords,
			"truncated":     sess.Truncated,
		}
	})
	if err == nil && payload == nil {
		err = session.ErrNoDocument
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
