// ABOUTME: MCP server exposing the stash article collection to AI agents
// ABOUTME: Wraps the sync engine, mutation façade, and local store behind MCP tools

package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/harper/stash/internal/mutate"
	"github.com/harper/stash/internal/store"
	syncengine "github.com/harper/stash/internal/sync"
)

// Server wraps the MCP server with stash-specific context.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
	engine    *syncengine.Engine
	mutator   *mutate.Mutator
	userID    string
}

// NewServer creates a new MCP server instance.
func NewServer(st store.Store, engine *syncengine.Engine, mutator *mutate.Mutator, userID string) *Server {
	s := &Server{
		store:   st,
		engine:  engine,
		mutator: mutator,
		userID:  userID,
	}

	s.mcpServer = server.NewMCPServer(
		"stash",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	return s
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
