// Package mcpserver exposes the person operations as tools over the Model
// Context Protocol. The server is meant to run as a child process of an
// assistant host and speak JSON-RPC over stdio, so it opens no network
// listener and performs no authentication of its own.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

const (
	ServerName    = "person-crud-server"
	ServerVersion = "1.0.0"
)

// New builds the MCP server with the six person tools registered
func New(people PersonOperations, log logrus.FieldLogger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
	)

	h := &toolHandlers{people: people, log: log}
	s.AddTools(h.tools()...)

	return s
}
