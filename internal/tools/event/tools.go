// Package event provides the namespace event tool.
package event

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

// ToolEvents is the name of the event tool.
const ToolEvents = "k8s_events"

const (
	minLimit = 1
	maxLimit = 500
)

// RegisterEventTools registers k8s_events.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tools.Register(s, sc, eventsTool(), handleEvents)
	return nil
}

func eventsTool() mcp.Tool {
	return mcp.NewTool(ToolEvents,
		mcp.WithDescription(`List core events in one namespace.

Cluster-wide event listing is not available.`),
		mcp.WithReadOnlyHintAnnotation(true),
		tools.NamespaceParam(true, "Namespace to list events in"),
		mcp.WithNumber(tools.ParamLimit,
			mcp.Description("Maximum number of events to return (1-500, default 100)"),
			mcp.Min(minLimit),
			mcp.Max(maxLimit),
		),
	)
}

// handleEvents handles k8s_events.
func handleEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	namespace := tools.StringArg(args, tools.ParamNamespace)

	if _, denied := tools.Authorize(ctx, sc, request, tools.Target{
		Verb:      policy.VerbEvents,
		Kind:      "Event",
		Plural:    "events",
		Namespace: namespace,
	}); denied != nil {
		return denied, nil
	}

	limit, _, err := tools.BoundedIntArg(args, tools.ParamLimit, minLimit, maxLimit)
	if err != nil {
		return tools.InvalidArgumentResult(ctx, sc, err), nil
	}
	limit = int64(output.EffectiveLimit(int(limit), sc.Sanitizer().Config().MaxItems))

	resp, err := tools.CallBackend(ctx, sc, "events", "events", namespace, func(ctx context.Context) (k8s.Response, error) {
		return sc.Backend().Events(ctx, namespace, limit)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}
	return tools.ResponseResult(ctx, sc, resp), nil
}
