// Package cluster provides the ping tool.
package cluster

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
)

// ToolPing is the name of the health tool.
const ToolPing = "ping"

// PingResponse is the result of the ping tool.
type PingResponse struct {
	Status        string `json:"status"`
	Server        string `json:"server"`
	Version       string `json:"version"`
	PolicyVersion string `json:"policyVersion"`
	BackendReady  bool   `json:"backendReady"`
}

// RegisterClusterTools registers ping.
func RegisterClusterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tool := mcp.NewTool(ToolPing,
		mcp.WithDescription("Check that the agent is running. Does not contact the cluster."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	tools.Register(s, sc, tool, handlePing)
	return nil
}

// handlePing reports server health. It addresses no resource, so the gate is
// not involved.
func handlePing(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.IsShutdown() {
		return tools.ErrorResult(ctx, sc, server.ErrServerShutdown.Error()), nil
	}

	cfg := sc.Config()
	return tools.JSONResult(ctx, sc, PingResponse{
		Status:        "ok",
		Server:        cfg.ServerName,
		Version:       cfg.Version,
		PolicyVersion: cfg.PolicyVersion,
		BackendReady:  sc.Backend().Ready(),
	}), nil
}
