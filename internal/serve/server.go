// Package serve exposes built archives and the catalog over HTTP. Requests resolve straight
// to files written by a build; nothing is transformed at request time.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/pbakaus/vibe-design-plugins/internal/catalog"
	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
	"github.com/pbakaus/vibe-design-plugins/internal/packaging"
)

const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string
	// DownloadsDir holds the archives written by a build.
	DownloadsDir string
	// DistDir holds catalog.json.
	DistDir string
}

// Validate checks that c can serve requests.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr cannot be empty")
	}
	if c.DownloadsDir == "" {
		return errors.New("downloads dir cannot be empty")
	}
	if c.DistDir == "" {
		return errors.New("dist dir cannot be empty")
	}
	return nil
}

// Server serves the download API.
type Server struct {
	router *mux.Router
	config Config
}

// New creates a Server.
func New(config Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	s := &Server{
		router: mux.NewRouter(),
		config: config,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Routes live on the root router; mux only reports 405 for method mismatches there.
	s.router.HandleFunc("/api/catalog", s.handleCatalog).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/api/download/bundle/{provider}", s.handleBundle).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/api/download/{kind}/{provider}/{id}", s.handleEntry).Methods(http.MethodGet, http.MethodHead)

	s.router.NotFoundHandler = s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeErrorResponse(w, http.StatusNotFound, "not found", nil)
	}))
	s.router.MethodNotAllowedHandler = s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("%s is not supported", r.Method))
	}))

	s.router.Use(s.loggingMiddleware)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("serving downloads", slog.String("addr", s.config.Addr), logging.Path(s.config.DownloadsDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.config.DistDir, catalog.FileName)
	s.serveFile(w, r, path, "application/json", "")
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	p, err := model.ParseProvider(mux.Vars(r)["provider"])
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid provider", err)
		return
	}
	s.serveArchive(w, r, p, "", "", p.String()+".zip")
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := model.ParseKind(vars["kind"])
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid kind", err)
		return
	}
	p, err := model.ParseProvider(vars["provider"])
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid provider", err)
		return
	}
	id := vars["id"]
	if err := model.ValidateID(id); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid id", err)
		return
	}
	s.serveArchive(w, r, p, kind, id, fmt.Sprintf("%s-%s.zip", p, id))
}

func (s *Server) serveArchive(w http.ResponseWriter, r *http.Request, p model.Provider, kind model.Kind, id, filename string) {
	path, err := packaging.Locate(s.config.DownloadsDir, p, kind, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeErrorResponse(w, http.StatusNotFound, "archive not found", err)
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to locate archive", err)
		return
	}
	s.serveFile(w, r, path, "application/zip", filename)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, contentType, filename string) {
	// #nosec G304 - path is resolved from validated route variables
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.writeErrorResponse(w, http.StatusNotFound, "not found", err)
			return
		}
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to open file", err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to stat file", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logging.WithContext(r.Context()).Info("HTTP request",
			slog.String("method", r.Method),
			logging.Path(r.URL.Path),
			slog.Int("status", rw.statusCode),
			logging.Duration(time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logging.Warn("failed to write error response", logging.Err(encErr))
	}
}
