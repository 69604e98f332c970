/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/server"
	"github.com/josephgoksu/smarttask/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one task session as a JSON API for a local dashboard",
	Long: `Start a local HTTP API holding one in-memory task session.

Endpoints:
  GET    /health
  GET    /api/session
  POST   /api/session/tasks         add one task
  DELETE /api/session/tasks         clear the batch
  DELETE /api/session/tasks/{id}    remove one task
  POST   /api/session/import        import a JSON batch
  PUT    /api/session/strategy      change the strategy
  POST   /api/session/analyze       rank the batch
  GET    /api/suggestions
  GET    /api/strategies

Browser origins are limited to server.allowedOrigins.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	strategy, err := resolveStrategy("")
	if err != nil {
		return err
	}
	rec := newRecorder()
	defer func() { _ = rec.Close() }()

	sess, err := newSession(strategy, rec, logSessionEvents())
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:           port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Session:        sess,
		Analyzer:       newAnalyzer(),
		Version:        GetVersion(),
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)
	if !isQuiet() {
		cmd.Printf("Dashboard API listening on http://localhost:%d (analysis service: %s)\n", port, cfg.API.URL)
		cmd.Println("Press Ctrl+C to stop.")
	}

	select {
	case err := <-errChan:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	wg.Wait()
	if !isQuiet() {
		cmd.Println("Server stopped.")
	}
	return nil
}

func logSessionEvents() session.Option {
	return session.WithListener(func(e session.Event) {
		logger.Info(e.Message(), "event", string(e.Type), "count", e.Count)
	})
}
