package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/expercise/expercise-interpreter/config"
	"github.com/expercise/expercise-interpreter/sandbox"
)

// Interpreter is the slice of the sandbox service the server consumes.
type Interpreter interface {
	Interpret(ctx context.Context, language, code string) (sandbox.Response, error)
	Languages() []string
}

// Server is the HTTP server for the interpreter API.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	interp Interpreter
	router chi.Router
	http   *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, logger *zap.Logger, interp Interpreter) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		interp: interp,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/languages", s.handleLanguages)
	r.Post("/interpret", s.handleInterpret)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called. It blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	s.logger.Info("starting HTTP server", zap.String("addr", addr))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
