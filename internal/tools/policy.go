package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

// Target names what a tool call addresses, as the handler understood it.
type Target struct {
	Verb      string
	Kind      string
	Plural    string
	Namespace string
	Name      string
}

// Authorize runs the policy gate for one tool call. The full, unfiltered
// argument map goes to the gate so that undeclared bulk selectors are seen.
//
// When the gate denies the call, the returned result carries the denial and
// the handler must return it without touching the backend.
func Authorize(ctx context.Context, sc *server.ServerContext, request mcp.CallToolRequest, target Target) (policy.Decision, *mcp.CallToolResult) {
	args := request.GetArguments()
	approved := BoolArg(args, ParamApproved)

	rc := policy.NewRequestContext(request.Params.Name, target.Verb,
		policy.WithKind(target.Kind),
		policy.WithNamespace(target.Namespace),
		policy.WithName(target.Name),
		policy.WithApproval(approved),
		policy.WithArguments(args),
	)

	decision := sc.Gate().Evaluate(rc)

	if inv := InvocationFromContext(ctx); inv != nil {
		denialKind := ""
		if decision.Denial != nil {
			denialKind = string(decision.Denial.Kind)
		}
		inv.WithVerb(target.Verb).
			WithResource(target.Namespace, target.Plural, target.Name).
			WithApproval(approved).
			WithDecision(denialKind, decision.PolicyVersion)
	}

	if !decision.Allowed {
		return decision, ErrorResult(ctx, sc, decision.Denial.Error())
	}
	return decision, nil
}
