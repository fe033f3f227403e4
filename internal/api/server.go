package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"akademiya/internal/services"
	"akademiya/internal/session"
)

const (
	maxMultipartMemory = 8 << 20 // 8 MB
	maxJSONBody        = 1 << 20
	sessionCookie      = "akademiya_session"
	timeLayout         = time.RFC3339
)

// AIStatus reports whether completions can be made.
type AIStatus interface {
	Enabled() bool
}

// Deps groups what the server needs from the application container.
type Deps struct {
	Store      *session.Store
	PDF        *services.PDFService
	Generation *services.GenerationService
	Items      *services.ItemService
	Study      *services.StudyService
	Usage      *services.UsageService
	AI         AIStatus
	Log        *zap.Logger

	MaxWords       int
	MaxUploadBytes int64
	SecureCookies  bool
}

type Server struct {
	mux      *http.ServeMux
	deps     Deps
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewServer(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		mux:      http.NewServeMux(),
		deps:     deps,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/usage", s.handleUsage)
	s.mux.HandleFunc("/api/documents", s.withSession(s.handleUploadDocument))
	s.mux.HandleFunc("/api/documents/text", s.withSession(s.handleDocumentText))
	s.mux.HandleFunc("/api/generate", s.withSession(s.handleGenerate))
	s.mux.HandleFunc("/api/results", s.withSession(s.handleResults))
	s.mux.HandleFunc("/api/summary/chunked", s.withSession(s.handleChunkedSummary))
	s.mux.HandleFunc("/api/flashcards", s.withSession(s.handleFlashcards))
	s.mux.HandleFunc("/api/flashcards/", s.withSession(s.handleFlashcardActions))
	s.mux.HandleFunc("/api/quiz", s.withSession(s.handleQuiz))
	s.mux.HandleFunc("/api/quiz/submit", s.withSession(s.handleQuizSubmit))
	s.mux.HandleFunc("/api/quiz/", s.withSession(s.handleQuizActions))
	s.mux.HandleFunc("/api/study/next", s.withSession(s.handleStudyNext))
	s.mux.HandleFunc("/api/study/", s.withSession(s.handleStudyActions))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sessionID string)

// withSession resolves the session cookie, creating a session when the cookie
// is missing or expired.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var current string
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			current = cookie.Value
		}
		id, created := s.deps.Store.Ensure(current)
		if created {
			s.log.Debug("session created", zap.String("session", id))
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.deps.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		next(w, r, id)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ai":     s.deps.AI != nil && s.deps.AI.Enabled(),
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.deps.Usage == nil {
		writeJSON(w, http.StatusOK, map[string]any{"usage": []any{}})
		return
	}
	summary, err := s.deps.Usage.Summary(r.Context())
	if err != nil {
		s.log.Error("usage summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, map[string]any{"usage": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usage": summary})
}

// decodeBody reads a JSON body into dst and runs struct validation. An empty
// body leaves dst at its zero value.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// indexAction splits "/prefix/{index}/{action}".
func indexAction(path, prefix string) (int, string, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return 0, "", false
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return index, parts[1], true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
