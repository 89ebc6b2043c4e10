package resource

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

// handleList handles k8s_list.
func handleList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	coord := coordinateFromArgs(args)
	coord.Name = ""

	if _, denied := tools.Authorize(ctx, sc, request, target(policy.VerbList, coord)); denied != nil {
		return denied, nil
	}

	limit, _, err := tools.BoundedIntArg(args, tools.ParamLimit, minListLimit, maxListLimit)
	if err != nil {
		return tools.InvalidArgumentResult(ctx, sc, err), nil
	}
	limit = int64(output.EffectiveLimit(int(limit), sc.Sanitizer().Config().MaxItems))

	opts := k8s.ListOptions{
		Limit:    limit,
		Continue: tools.StringArg(args, paramContinueToken),
	}

	resp, err := tools.CallBackend(ctx, sc, "list", coord.Plural, coord.Namespace, func(ctx context.Context) (k8s.Response, error) {
		return sc.Backend().List(ctx, coord, opts)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}
	return tools.ResponseResult(ctx, sc, resp), nil
}

// handleGet handles k8s_get.
func handleGet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	coord := coordinateFromArgs(request.GetArguments())

	if _, denied := tools.Authorize(ctx, sc, request, target(policy.VerbGet, coord)); denied != nil {
		return denied, nil
	}

	resp, err := tools.CallBackend(ctx, sc, "get", coord.Plural, coord.Namespace, func(ctx context.Context) (k8s.Response, error) {
		return sc.Backend().Get(ctx, coord)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}
	return tools.ResponseResult(ctx, sc, resp), nil
}

// handleDelete handles k8s_delete. Exactly one named object is removed.
func handleDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	coord := coordinateFromArgs(args)

	if _, denied := tools.Authorize(ctx, sc, request, target(policy.VerbDelete, coord)); denied != nil {
		return denied, nil
	}

	opts, err := deleteOptionsFromArgs(args)
	if err != nil {
		return tools.InvalidArgumentResult(ctx, sc, err), nil
	}

	resp, err := tools.CallBackend(ctx, sc, "delete", coord.Plural, coord.Namespace, func(ctx context.Context) (k8s.Response, error) {
		return sc.Backend().Delete(ctx, coord, opts)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}

	sc.Logger().Info("Deleted object",
		"resource", coord.String(),
		"policy_version", sc.Config().PolicyVersion)
	return tools.ResponseResult(ctx, sc, resp), nil
}

func deleteOptionsFromArgs(args map[string]interface{}) (k8s.DeleteOptions, error) {
	var opts k8s.DeleteOptions

	grace, ok, err := tools.BoundedIntArg(args, paramGracePeriod, minGracePeriod, maxGracePeriod)
	if err != nil {
		return opts, err
	}
	if ok {
		opts.GracePeriodSeconds = &grace
	}

	if raw := tools.StringArg(args, paramPropagation); raw != "" {
		valid := false
		for _, p := range propagationPolicies {
			if raw == p {
				valid = true
				break
			}
		}
		if !valid {
			return opts, fmt.Errorf("%s must be one of Foreground, Background, Orphan", paramPropagation)
		}
		propagation := metav1.DeletionPropagation(raw)
		opts.PropagationPolicy = &propagation
	}

	return opts, nil
}

// handlePatch handles k8s_patch. The backend receives the typed intent the
// gate produced, never the raw arguments.
func handlePatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	coord := coordinateFromArgs(request.GetArguments())

	decision, denied := tools.Authorize(ctx, sc, request, target(policy.VerbPatch, coord))
	if denied != nil {
		return denied, nil
	}
	if decision.Intent == nil {
		return tools.ErrorResult(ctx, sc, policy.ErrGateError.Error()), nil
	}

	resp, err := tools.CallBackend(ctx, sc, "patch", coord.Plural, coord.Namespace, func(ctx context.Context) (k8s.Response, error) {
		return sc.Backend().Patch(ctx, coord, decision.Intent)
	})
	if err != nil {
		return tools.BackendErrorResult(ctx, sc, err), nil
	}

	sc.Logger().Info("Patched object",
		"resource", coord.String(),
		"action", string(decision.Intent.Action()),
		"policy_version", decision.PolicyVersion)
	return tools.ResponseResult(ctx, sc, resp), nil
}
