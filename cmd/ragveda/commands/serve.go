// ABOUTME: Serve command runs the HTTP API and frontend
// ABOUTME: Indexing runs in the background; the server answers health checks immediately
package commands

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Serves /health, /stats, POST /ask, and the built frontend. The corpus is
indexed in the background after the server starts; /health reports
"initializing" until it finishes. A missing corpus leaves the server
running but permanently not ready.`,
		Example: `  # Serve on the default port 8000
  ragveda serve

  # Serve on another port with a persistent index
  PORT=9000 RAGVEDA_INDEX_PATH=./index.db ragveda serve`,
		RunE: runServe,
	}

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Warning: Error closing index: %v", err)
		}
	}()

	srv := server.New(a.engine, server.Options{
		Addr:           cfg.Addr(),
		FrontendDir:    cfg.FrontendDir,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	initDone := startInitialize(ctx, a.engine)

	err = srv.Run(ctx)

	// Stop ingestion and wait for it before the deferred Close
	stop()
	<-initDone
	return err
}

// startInitialize runs initializeEngine in the background. The returned
// channel is closed once it returns.
func startInitialize(ctx context.Context, engine *core.Engine) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		initializeEngine(ctx, engine)
	}()
	return done
}

// initializeEngine builds the index and logs the outcome
func initializeEngine(ctx context.Context, engine *core.Engine) {
	err := engine.Initialize(ctx)
	switch {
	case err == nil:
		log.Println("RAG engine is ready")
	case errors.Is(err, core.ErrCorpusNotFound):
		log.Printf("Warning: %v. Please add the corpus file and restart.", err)
	default:
		log.Printf("Warning: RAG engine not ready: %v", err)
	}
}
