// Package static serves the bundled manifest and audio files over HTTP so the
// player can be pointed at a manifest URL instead of a local directory.
package static

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/manifest"
)

// MusicPrefix is the URL prefix for bundled files, matching manifest.DefaultPath.
const MusicPrefix = "/music/"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// NewRouter returns the routes of the static host. manifestPath is the
// manifest's slash-separated path below root; empty means manifest.DefaultPath.
//
//	GET /healthz      liveness check
//	GET /api/tracks   the manifest at manifestPath, parsed and normalized
//	GET /music/...    files below root/music
func NewRouter(root, manifestPath string, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, logMiddleware(logger))

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/tracks", tracksHandler(manifest.FilePath(root, manifestPath), logger)).Methods(http.MethodGet)

	files := http.FileServer(http.Dir(root))
	router.PathPrefix(MusicPrefix).Handler(files).Methods(http.MethodGet, http.MethodHead)

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("elapsed", time.Since(start)))
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func tracksHandler(path string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.Error(w, "manifest not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to open manifest", slog.String("path", path), slog.Any("error", err))
			http.Error(w, "manifest unavailable", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		tracks, err := manifest.Read(f)
		if err != nil {
			logger.Error("failed to parse manifest", slog.String("path", path), slog.Any("error", err))
			http.Error(w, "manifest unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tracks)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Server hosts the router until its context is cancelled.
type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

// NewServer creates a static host listening on addr and serving root, with
// /api/tracks reading the manifest at manifestPath below root.
func NewServer(addr, root, manifestPath string, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(root, manifestPath, logger),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("static host listening", slog.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "static host failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "static host shutdown")
	}
	<-errCh
	s.logger.Info("static host stopped")
	return nil
}
