// Package api serves the archived digests, the hourly panel and the live
// receiver feed over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"skylog/internal/digest"
)

// Config holds configuration for the digest server.
type Config struct {
	Port           int
	AllowedOrigins []string
	ArchiveDir     string
	PanelFile      string
	LiveFeed       string
}

// Server is a read-only HTTP front for the files the pipeline writes.
type Server struct {
	cfg Config
}

// NewServer creates a new digest server.
func NewServer(cfg Config) *Server {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{cfg: cfg}
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/dados", s.handleLiveFeed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/digests", s.handleListDigests)
		r.Get("/digests/latest", s.handleLatestDigest)
		r.Get("/digests/{date}", s.handleDigest)
		r.Get("/panel", s.handlePanel)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zap.L().Info("api: listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "api: serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zap.L().Info("api: shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "api: shutdown")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLiveFeed passes the receiver's aircraft.json through unchanged.
func (s *Server) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, s.cfg.LiveFeed, "live feed unavailable", http.StatusServiceUnavailable)
}

func (s *Server) handleListDigests(w http.ResponseWriter, _ *http.Request) {
	dates, err := digest.ListDates(s.cfg.ArchiveDir)
	if errors.Is(err, fs.ErrNotExist) {
		dates = []string{}
	} else if err != nil {
		zap.L().Error("api: list digests", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list digests")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates, "count": len(dates)})
}

func (s *Server) handleLatestDigest(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, filepath.Join(s.cfg.ArchiveDir, digest.LatestName), "no digest yet", http.StatusNotFound)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !digest.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		return
	}
	s.serveFile(w, r, filepath.Join(s.cfg.ArchiveDir, date+".json"), "digest not found", http.StatusNotFound)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, s.cfg.PanelFile, "no panel yet", http.StatusNotFound)
}

// serveFile writes a JSON file as the response body.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, missing string, missingStatus int) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, missingStatus, missing)
		return
	}
	if err != nil {
		zap.L().Error("api: read file", zap.String("path", path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

// requestLogger logs each request through zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
