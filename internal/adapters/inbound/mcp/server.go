package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewPortcoreMCPServer creates a new MCP server with all portcore tools and
// resources registered. The projectPath is the solution directory holding
// .portcore.yaml and the analyzer dump.
func NewPortcoreMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"portcore",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
