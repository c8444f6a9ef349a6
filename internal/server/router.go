// Package server exposes the grabarr HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"grabarr/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Version is reported by the API info endpoint.
const Version = "1.0.0"

// Downloader is the orchestrator surface the handlers consume.
type Downloader interface {
	Download(ctx context.Context, url string, dlType models.DownloadType) (*models.DownloadResult, error)
	Info(ctx context.Context, url string) (*models.VideoInfo, error)
	OutputDir() string
	Platforms() []string
}

// HistoryStore reads recorded downloads.
type HistoryStore interface {
	LatestDownloads(limit int) ([]models.DownloadRecord, error)
}

// Server wires the orchestrators to the HTTP surface.
type Server struct {
	dl      Downloader
	history HistoryStore
	log     zerolog.Logger
}

// New builds a Server. history may be nil when bookkeeping is disabled.
func New(dl Downloader, history HistoryStore, log zerolog.Logger) *Server {
	return &Server{dl: dl, history: history, log: log}
}

// Router returns the http.Handler serving the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/download", s.handleDownload)
	r.Post("/download/telegram", s.handleTelegramDownload)
	r.Post("/info", s.handleInfo)
	r.Get("/files", s.handleListFiles)
	r.Get("/files/{filename}", s.handleGetFile)
	r.Get("/history", s.handleHistory)

	return r
}

// Start runs the HTTP server until ctx is cancelled, then drains it.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("grabarr server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
