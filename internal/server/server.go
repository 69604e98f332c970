// Package server exposes one in-memory session as a small JSON API for a
// local dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
)

// Config configures New.
type Config struct {
	Port           int
	AllowedOrigins []string
	Session        *session.Session
	Analyzer       analyzer.Service
	// Validator assigns ids to imported and added tasks. Nil uses the
	// package default.
	Validator *task.Validator
	Version   string
}

type Server struct {
	session   *session.Session
	analyzer  analyzer.Service
	validator *task.Validator
	origins   []string
	version   string
	port      int
	server    *http.Server
}

func New(cfg Config) (*Server, error) {
	if cfg.Session == nil {
		return nil, errors.New("server: session is required")
	}
	if cfg.Analyzer == nil {
		return nil, errors.New("server: analyzer is required")
	}
	v := cfg.Validator
	if v == nil {
		v = task.NewValidator(nil)
	}

	s := &Server{
		session:   cfg.Session,
		analyzer:  cfg.Analyzer,
		validator: v,
		origins:   cfg.AllowedOrigins,
		version:   cfg.Version,
		port:      cfg.Port,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves in a goroutine. Errors other than a clean shutdown are sent
// to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Debug("api server shutting down", "addr", s.server.Addr)
	return s.server.Shutdown(ctx)
}
