// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package exposes the interpreter service as an MCP tool. It
// uses the mark3labs/mcp-go library to handle the protocol details and
// provides the interpret_code tool as the interface for sandboxed code
// execution.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/expercise/expercise-interpreter/config"
	"github.com/expercise/expercise-interpreter/sandbox"
)

// Interpreter is the slice of the sandbox service the server consumes.
type Interpreter interface {
	Interpret(ctx context.Context, language, code string) (sandbox.Response, error)
	Languages() []string
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	interp    Interpreter
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, interp Interpreter) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		interp: interp,
	}

	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.Int64("sandbox.memory_limit_mb", s.config.Sandbox.MemoryLimitMB),
		zap.Int("sandbox.output_limit_bytes", s.config.Sandbox.OutputLimitBytes),
		zap.String("sandbox.mount_path", s.config.Sandbox.MountPath),
		zap.Strings("languages", interp.Languages()),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("expercise-interpreter", "A sandboxed code interpreter")

	// Register the interpret_code tool
	s.registerInterpretCodeTool()

	return s, nil
}

// registerInterpretCodeTool registers the interpret_code tool
func (s *MCPServer) registerInterpretCodeTool() {
	tool := mcp.Tool{
		Name:        "interpret_code",
		Description: "Run untrusted source code in an isolated container and return its bounded stdout and stderr",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "User-provided source code",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Interpreter language",
					"enum":        s.interp.Languages(),
				},
			},
			Required: []string{"code", "language"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleInterpretCode)
}

// handleInterpretCode handles the interpret_code tool
func (s *MCPServer) handleInterpretCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	language, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	s.logger.Info("interpreting code in sandbox",
		zap.String("language", language),
		zap.Int("code_len", len(code)))

	result, err := s.interp.Interpret(ctx, language, code)
	if err != nil {
		s.logger.Error("sandbox interpretation failed",
			zap.Error(err),
			zap.String("language", language))

		message := "execution failed"
		switch {
		case sandbox.IsMemoryLimit(err):
			message = "memory limit exceeded"
		case sandbox.IsInfra(err):
			message = "sandbox unavailable"
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: message,
				},
			},
			IsError: true,
		}, nil
	}

	s.logger.Info("interpretation completed",
		zap.String("language", language),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)))

	resultJSON := fmt.Sprintf(`{"stdout":%q,"stderr":%q}`, result.Stdout, result.Stderr)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: resultJSON,
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}
