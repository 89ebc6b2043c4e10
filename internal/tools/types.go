package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// Register adds tool to s behind the audit wrapper.
func Register(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler ToolHandler) {
	s.AddTool(tool, WrapWithAuditLogging(tool.Name, handler, sc))
}
