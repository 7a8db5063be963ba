// Package server exposes video processing over HTTP.
package server

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/config"
	"github.com/swdee/go-cvtrack/detect"
)

// Server handles video processing requests, each target has its own pool of
// detectors which bounds the number of videos processed concurrently
type Server struct {
	cfg    *config.Config
	pools  map[cvtrack.Target]*cvtrack.Pool
	router chi.Router
}

// New creates the upload and output directories and a detector pool for
// every target
func New(cfg *config.Config) (*Server, error) {

	for _, dir := range []string{cfg.Server.UploadDir, cfg.Server.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating directory %s: %w", dir, err)
		}
	}

	s := &Server{
		cfg:   cfg,
		pools: make(map[cvtrack.Target]*cvtrack.Pool),
	}

	for _, target := range cvtrack.Targets() {
		pool, err := cvtrack.NewPool(target, cfg.Server.PoolSize,
			detect.Factory(target, cfg.Detectors))

		if err != nil {
			s.Close()
			return nil, fmt.Errorf("error creating %s detector pool: %w", target, err)
		}

		s.pools[target] = pool
	}

	s.router = s.routes()

	log.WithFields(log.Fields{
		"pool_size": cfg.Server.PoolSize,
		"upload":    cfg.Server.UploadDir,
		"output":    cfg.Server.OutputDir,
	}).Info("Created detector pools")

	return s, nil
}

func (s *Server) routes() chi.Router {

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post("/process_video", s.processVideo)
	r.Get("/health", s.health)
	r.Get("/targets", s.targets)

	return r
}

// Handler returns the HTTP handler for all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases all pooled detectors
func (s *Server) Close() {
	for _, pool := range s.pools {
		pool.Close()
	}
}

// corsMiddleware allows requests from any origin
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers",
			"Content-Disposition, X-Frames-Processed, X-Tracks-Started")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request once it completes
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
		}).Debug("Request")
	})
}
