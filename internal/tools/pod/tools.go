// Package pod provides the pod log tool.
package pod

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
)

// ToolPodLogs is the name of the pod log tool.
const ToolPodLogs = "k8s_pod_logs"

const (
	paramPod        = "pod"
	paramContainer  = "container"
	paramTailLines  = "tail_lines"
	paramPrevious   = "previous"
	paramTimestamps = "timestamps"

	minTailLines = 1
	maxTailLines = 5000
)

// RegisterPodTools registers k8s_pod_logs.
func RegisterPodTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tools.Register(s, sc, podLogsTool(), handlePodLogs)
	return nil
}

func podLogsTool() mcp.Tool {
	return mcp.NewTool(ToolPodLogs,
		mcp.WithDescription(`Get the logs of one pod container.

Output is sanitized and truncated to the configured line budget.`),
		mcp.WithReadOnlyHintAnnotation(true),
		tools.NamespaceParam(true, "Namespace of the pod"),
		mcp.WithString(paramPod,
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		mcp.WithString(paramContainer,
			mcp.Description("Container name (optional for single-container pods)"),
		),
		mcp.WithNumber(paramTailLines,
			mcp.Description("Number of lines from the end of the log (1-5000)"),
			mcp.Min(minTailLines),
			mcp.Max(maxTailLines),
		),
		mcp.WithBoolean(paramPrevious,
			mcp.Description("Return logs of the previous terminated container"),
		),
		mcp.WithBoolean(paramTimestamps,
			mcp.Description("Prefix each line with its timestamp"),
		),
	)
}

// handlePodLogs handles k8s_pod_logs.
func handlePodLogs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	namespace := tools.StringArg(args, tools.ParamNamespace)
	pod := tools.StringArg(args, paramPod)

	if _, denied := tools.Authorize(ctx, sc, request, tools.Target{
		Verb:      policy.VerbPodLogs,
		Kind:      "Pod",
		Plural:    "pods",
		Namespace: namespace,
		Name:      pod,
	}); denied != nil {
		return denied, nil
	}

	tail, ok, err := tools.BoundedIntArg(args, paramTailLines, minTailLines, maxTailLines)
	if err != nil {
		return tools.InvalidArgumentResult(ctx, sc, err), nil
	}
	if !ok {
		tail = int64(sc.Sanitizer().Config().MaxLines)
	}

	opts := k8s.LogOptions{
		Container:  tools.StringArg(args, paramContainer),
		Previous:   tools.BoolArg(args, paramPrevious),
		Timestamps: tools.BoolArg(args, paramTimestamps),
		TailLines:  &tail,
	}

	logs, err := tools.CallBackend(ctx, sc, "pod_logs", "pods", namespace, func(ctx context.Context) (string, error) {
		return sc.Backend().PodLogs(ctx, namespace, pod, opts)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}
	if logs == "" {
		return tools.TextResult(ctx, sc, "(no log output)"), nil
	}
	return tools.TextResult(ctx, sc, logs), nil
}
