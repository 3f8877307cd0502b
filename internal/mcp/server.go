// Package mcp exposes the gate to MCP clients over stdio. The run tool
// blocks while a confirmation is pending; the confirm tool resolves it
// from a parallel request, mirroring the HTTP handshake.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"shellgate/internal/confirm"
	"shellgate/internal/gate"
)

// Server wraps the MCP SDK server around the gate.
type Server struct {
	mcpServer   *mcpsdk.Server
	gate        *gate.Gate
	coordinator *confirm.Coordinator
	logger      *slog.Logger
}

// New creates an MCP server over an already-constructed gate.
// coordinator may be nil when the gate uses a different confirmer.
func New(g *gate.Gate, coordinator *confirm.Coordinator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		gate:        g,
		coordinator: coordinator,
		logger:      logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "shellgate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all shellgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shellgate_run",
		Description: "Execute a shell command through shellgate policy enforcement. Blocks while human confirmation is pending; blocked commands return an error with the reason.",
	}, s.handleRun)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shellgate_check",
		Description: "Check how shellgate would decide a command without executing it (dry-run).",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shellgate_pending",
		Description: "List commands currently awaiting human confirmation.",
	}, s.handlePending)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shellgate_confirm",
		Description: "Confirm or reject the pending command for a session. Fails if the session has no pending command.",
	}, s.handleConfirm)
}
