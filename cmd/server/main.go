// Package main is the entry point for the interpreter server.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/expercise/expercise-interpreter/apiserver"
	"github.com/expercise/expercise-interpreter/config"
	"github.com/expercise/expercise-interpreter/logger"
	"github.com/expercise/expercise-interpreter/mcpserver"
	"github.com/expercise/expercise-interpreter/sandbox"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Interpreter service (pulls all configured images up front)
			sandbox.NewFromConfig,

			// Transports
			func(cfg *config.Config, log *zap.Logger, svc *sandbox.Service) *apiserver.Server {
				return apiserver.New(cfg, log, svc)
			},
			func(cfg *config.Config, log *zap.Logger, svc *sandbox.Service) (*mcpserver.MCPServer, error) {
				return mcpserver.New(cfg, log, svc)
			},
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, api *apiserver.Server, mcp *mcpserver.MCPServer, svc *sandbox.Service) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						switch cfg.Server.Transport {
						case "http":
							go func() {
								if err := api.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
									log.Fatal("HTTP server failed", zap.Error(err))
								}
							}()
						case "mcp-stdio":
							go func() {
								if err := mcp.ServeStdio(); err != nil {
									log.Fatal("MCP stdio server failed", zap.Error(err))
								}
							}()
						case "mcp-http":
							go func() {
								if err := mcp.ServeHTTP(); err != nil && !errors.Is(err, http.ErrServerClosed) {
									log.Fatal("MCP HTTP server failed", zap.Error(err))
								}
							}()
						default:
							return errors.New("unsupported transport: " + cfg.Server.Transport)
						}
						return nil
					},
					OnStop: func(ctx context.Context) error {
						if cfg.Server.Transport == "http" {
							if err := api.Shutdown(ctx); err != nil {
								log.Warn("HTTP server shutdown failed", zap.Error(err))
							}
						}
						return svc.Close()
					},
				})
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
