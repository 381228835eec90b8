// ABOUTME: HTTP server exposing the question-answering engine and the static frontend
// ABOUTME: Wires routes, CORS, request ids, access logging, and graceful shutdown
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/ragveda/internal/models"
	"github.com/rs/cors"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Engine is the subset of the RAG engine the HTTP layer needs
type Engine interface {
	Ask(ctx context.Context, question string, contextLimit *int) (*models.Answer, error)
	Health() models.Health
	Stats(ctx context.Context) (models.Stats, error)
}

// Options configures the HTTP server
type Options struct {
	Addr           string
	FrontendDir    string
	AllowedOrigins []string
}

// Server serves the JSON API and the built frontend
type Server struct {
	engine        Engine
	opts          Options
	frontendReady bool
	handler       http.Handler
	httpServer    *http.Server
}

// New builds a Server. The frontend directory is inspected once, here.
func New(engine Engine, opts Options) *Server {
	s := &Server{
		engine:        engine,
		opts:          opts,
		frontendReady: dirHasEntries(opts.FrontendDir),
	}

	if !s.frontendReady {
		log.Println("Warning: frontend build not found or empty. Run 'npm run build' in frontend.")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	assets := filepath.Join(opts.FrontendDir, "assets")
	if s.frontendReady && isDir(assets) {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(assets))))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.handler = requestID(accessLog(c.Handler(mux)))
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.opts.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func dirHasEntries(dir string) bool {
	if dir == "" {
		return false
	}
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
