package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/quaestio/internal/handlers"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(app *App) *Server {
	s := &Server{app: app}
	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", app.Config.Server.Host, app.Config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.withLogging(s.router),
		// Generous write timeout: PDF export and large question lists
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	material := handlers.NewMaterialHandler(s.app.Storage, s.app.Pipeline, s.app.Logger)
	job := handlers.NewJobHandler(s.app.Storage, s.app.Logger)
	question := handlers.NewQuestionHandler(s.app.Storage, s.app.Logger)
	batch := handlers.NewBatchHandler(s.app.Storage, s.app.Batch, s.app.Logger)
	exportHandler := handlers.NewExportHandler(s.app.Storage, s.app.Export, s.app.Logger)

	mux.HandleFunc("GET /health", handlers.HealthHandler)

	mux.HandleFunc("POST /api/materials", material.UploadHandler)
	mux.HandleFunc("GET /api/materials", material.ListHandler)
	mux.HandleFunc("GET /api/materials/{id}", material.GetHandler)
	mux.HandleFunc("POST /api/materials/{id}/analyze", material.AnalyzeHandler)
	mux.HandleFunc("GET /api/materials/{id}/topics", material.TopicsHandler)
	mux.HandleFunc("GET /api/materials/{id}/questions", question.ListByMaterialHandler)
	mux.HandleFunc("GET /api/materials/{id}/export", exportHandler.PracticeSetHandler)

	mux.HandleFunc("GET /api/topics/{id}/questions", question.ListByTopicHandler)
	mux.HandleFunc("GET /api/questions/{id}", question.GetHandler)

	mux.HandleFunc("GET /api/jobs", job.ListHandler)
	mux.HandleFunc("GET /api/jobs/{id}", job.GetHandler)

	mux.HandleFunc("POST /api/batch/reanalyze", batch.ReanalyzeHandler)
	mux.HandleFunc("PUT /api/scopes/{scope}/answer-key", batch.AnswerKeyHandler)

	return mux
}

// withLogging logs each request with method, path, and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.app.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("duration", time.Since(start).String()).
			Msg("Request handled")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
