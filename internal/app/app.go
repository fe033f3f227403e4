// Package app wires configuration, logging, storage and services together for
// both the HTTP server and the CLI.
package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"akademiya/internal/api"
	"akademiya/internal/config"
	"akademiya/internal/db"
	"akademiya/internal/logger"
	"akademiya/internal/services"
	"akademiya/internal/session"
)

type App struct {
	Config config.Config
	Log    *zap.Logger
	DB     *sql.DB

	Usage      *services.UsageService
	AI         *services.AIService
	PDF        *services.PDFService
	Generation *services.GenerationService
	Items      *services.ItemService
	Study      *services.StudyService
	Sessions   *session.Store
}

func New(cfg config.Config) (*App, error) {
	log := logger.New(cfg.LogFile, cfg.IsProduction())

	conn, err := db.Open(cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	usage := services.NewUsageService(conn)
	ai := services.NewAIService(services.AIConfig{
		APIKey:   cfg.OpenAIKey,
		Endpoint: cfg.OpenAIEndpoint,
		Model:    cfg.OpenAIModel,
		Timeout:  cfg.OpenAITimeout,
	}, usage, logger.Module(log, "ai"))
	if !ai.Enabled() {
		log.Warn("OPENAI_API_KEY not set; AI features are disabled")
	}

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         conn,
		Usage:      usage,
		AI:         ai,
		PDF:        services.NewPDFService(),
		Generation: services.NewGenerationService(ai, cfg.OpenAITemperature, logger.Module(log, "generation")),
		Items:      services.NewItemService(ai, logger.Module(log, "items")),
		Study:      services.NewStudyService(),
		Sessions:   session.NewStore(cfg.SessionTTL),
	}, nil
}

// Handler builds the HTTP API over the app's services.
func (a *App) Handler() http.Handler {
	server := api.NewServer(api.Deps{
		Store:          a.Sessions,
		PDF:            a.PDF,
		Generation:     a.Generation,
		Items:          a.Items,
		Study:          a.Study,
		Usage:          a.Usage,
		AI:             a.AI,
		Log:            logger.Module(a.Log, "api"),
		MaxWords:       a.Config.MaxWords,
		MaxUploadBytes: a.Config.MaxUploadBytes,
		SecureCookies:  a.Config.IsProduction(),
	})
	return server.Handler()
}

// HTTPServer returns a server listening on the configured port. There is no
// write deadline: a request may chain many completion calls, each bounded by
// the client timeout and cancelled with the request context.
func (a *App) HTTPServer() *http.Server {
	mux := http.NewServeMux()
	handler := a.Handler()
	mux.Handle("/api", handler)
	mux.Handle("/api/", handler)

	return &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
	}
}

func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}
