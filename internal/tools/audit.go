// Package tools provides shared utilities and types for MCP tool implementations.
package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

type invocationKey struct{}

// InvocationFromContext returns the audit record of the running tool call.
// Handlers invoked outside WrapWithAuditLogging get nil.
func InvocationFromContext(ctx context.Context) *instrumentation.ToolInvocation {
	inv, _ := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation)
	return inv
}

// ContextWithInvocation attaches inv to ctx.
func ContextWithInvocation(ctx context.Context, inv *instrumentation.ToolInvocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// WrapWithAuditLogging wraps a tool handler with tracing, metrics and audit
// logging. The audit record travels in the context so that Authorize and the
// result helpers can fill in the decision and sanitization details.
//
// Every call produces exactly one audit record and one tool_invocations_total
// sample, whether the gate denied it, the backend failed, or it succeeded.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).WithSpanContext(ctx)
		ctx = ContextWithInvocation(ctx, invocation)

		result, err := handler(ctx, request, sc)

		switch {
		case err != nil:
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			msg := resultText(result)
			invocation.CompleteWithError(errors.New(msg))
			instrumentation.SetSpanError(span, errors.New(msg))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
			WithVerb(invocation.Verb).
			WithNamespace(invocation.Namespace).
			WithApproval(invocation.Approved).
			WithDecision(invocation.DenialKind, invocation.PolicyVersion).
			Build()...)

		sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), invocation.Duration)
		sc.AuditLogger().LogToolInvocation(invocation)

		return result, err
	}
}

// resultText returns the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
