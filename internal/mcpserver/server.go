// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes sync and journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/eliasvk/tracksync/internal/journal"
	"github.com/eliasvk/tracksync/internal/syncer"
)

// SyncRunner is the slice of the orchestrator exposed as tools.
type SyncRunner interface {
	SyncToday(ctx context.Context) (syncer.Summary, error)
	SyncAll(ctx context.Context) (syncer.Summary, error)
}

// Server wraps the MCP server with tracksync tools.
type Server struct {
	mcp     *server.MCPServer
	runner  SyncRunner
	journal journal.Store
}

// New creates a new MCP server with all tools registered.
func New(runner SyncRunner, jr journal.Store) *Server {
	s := &Server{runner: runner, journal: jr}

	s.mcp = server.NewMCPServer(
		"tracksync",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("sync_today",
		mcp.WithDescription("Fetch today's TimeFlip report and reconcile it into today's daily note."),
	), s.syncToday)

	s.mcp.AddTool(mcp.NewTool("sync_all",
		mcp.WithDescription("Fetch the full TimeFlip report history and reconcile every day with an existing daily note."),
	), s.syncAll)

	s.mcp.AddTool(mcp.NewTool("get_daily_report",
		mcp.WithDescription("Return the cached normalized report for one date (task names, seconds, rounded minutes)."),
		mcp.WithString("date", mcp.Required(), mcp.Description("ISO date, e.g. 2024-05-01")),
	), s.getDailyReport)

	s.mcp.AddTool(mcp.NewTool("list_imports",
		mcp.WithDescription("List recent import journal rows: date, task count, properties written, imported-at."),
	), s.listImports)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) syncToday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.runner.SyncToday(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return summaryResult(sum)
}

func (s *Server) syncAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.runner.SyncAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return summaryResult(sum)
}

func (s *Server) getDailyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, ok, err := s.journal.Report(date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no cached report for %s", date)), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listImports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	imports, err := s.journal.Imports(50)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(imports) == 0 {
		return mcp.NewToolResultText("no imports recorded"), nil
	}
	out, _ := json.MarshalIndent(imports, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func summaryResult(sum syncer.Summary) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
