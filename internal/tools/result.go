package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

// sanitize passes text through the sanitizer and records what it changed on
// the metrics and the audit record of the running call.
func sanitize(ctx context.Context, sc *server.ServerContext, text string) string {
	toolName := ""
	inv := InvocationFromContext(ctx)
	if inv != nil {
		toolName = inv.Tool
	}

	clean, report := sc.Sanitizer().SanitizeWithReport(toolName, text)
	sc.Metrics().RecordSanitization(ctx, report.Redactions, report.Truncated, report.OriginalLines)

	if inv != nil {
		inv.WithSanitization(inv.Redactions+report.TotalRedactions(), inv.Truncated || report.Truncated)
	}
	return clean
}

// TextResult returns text as a successful tool result, sanitized.
func TextResult(ctx context.Context, sc *server.ServerContext, text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(sanitize(ctx, sc, text))
}

// ErrorResult returns msg as a tool error, sanitized.
func ErrorResult(ctx context.Context, sc *server.ServerContext, msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(sanitize(ctx, sc, msg))
}

// InvalidArgumentResult reports a malformed argument the gate does not judge.
func InvalidArgumentResult(ctx context.Context, sc *server.ServerContext, err error) *mcp.CallToolResult {
	return ErrorResult(ctx, sc, fmt.Sprintf("ERROR: %s: %v", k8s.ErrorInvalid, err))
}

// JSONResult marshals v and returns it as a sanitized tool result.
func JSONResult(ctx context.Context, sc *server.ServerContext, v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(ctx, sc, fmt.Sprintf("failed to marshal response: %v", err))
	}
	return TextResult(ctx, sc, string(data))
}

// ResponseResult prunes a backend response and returns it as JSON. Lists keep
// their continue token in metadata.continue.
func ResponseResult(ctx context.Context, sc *server.ServerContext, resp k8s.Response) *mcp.CallToolResult {
	switch r := resp.(type) {
	case *k8s.SingleResponse:
		return JSONResult(ctx, sc, sc.Sanitizer().PruneUnstructured(r.Object))
	case *k8s.CollectionResponse:
		return JSONResult(ctx, sc, sc.Sanitizer().PruneUnstructuredList(r.List))
	case nil:
		return ErrorResult(ctx, sc, "ERROR: transport: backend returned no response")
	default:
		return ErrorResult(ctx, sc, fmt.Sprintf("ERROR: transport: unexpected response type %T", resp))
	}
}

// BackendErrorResult classifies err and returns "ERROR: <kind>: <message>".
// A policy denial raised by the backend after resolving the resource is
// reported like a gate denial.
func BackendErrorResult(ctx context.Context, sc *server.ServerContext, err error) *mcp.CallToolResult {
	if denial, ok := policy.AsDenial(err); ok {
		if inv := InvocationFromContext(ctx); inv != nil {
			inv.WithDecision(string(denial.Kind), inv.PolicyVersion)
		}
		return ErrorResult(ctx, sc, denial.Error())
	}
	return ErrorResult(ctx, sc, k8s.ClassifyError(err).Error())
}

// CallBackend runs one backend call inside a k8s span and records its
// outcome. The status label is "success", "denied" or the classified error
// kind.
func CallBackend[T any](ctx context.Context, sc *server.ServerContext, operation, resourceType, namespace string, call func(context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartK8sSpan(ctx, operation, resourceType, namespace)
	defer span.End()

	start := time.Now()
	result, err := call(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	switch {
	case policy.IsDenial(err):
		status = instrumentation.StatusDenied
		instrumentation.SetSpanError(span, err)
	case err != nil:
		classified := k8s.ClassifyError(err)
		status = string(classified.Kind)
		instrumentation.SetSpanError(span, classified)
		sc.Logger().Debug("Backend call failed",
			"operation", operation,
			"resource_type", resourceType,
			"namespace", namespace,
			"error_kind", status)
	default:
		instrumentation.SetSpanSuccess(span)
	}

	sc.Metrics().RecordK8sOperation(ctx, operation, resourceType, namespace, status, duration)
	return result, err
}
