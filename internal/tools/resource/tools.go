package resource

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
)

// RegisterResourceTools registers k8s_list, k8s_get, k8s_delete and k8s_patch.
func RegisterResourceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	tools.Register(s, sc, listTool(), handleList)
	tools.Register(s, sc, getTool(), handleGet)
	tools.Register(s, sc, deleteTool(), handleDelete)
	tools.Register(s, sc, patchTool(), handlePatch)
	return nil
}

func listTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(`List Kubernetes objects of one resource type in one namespace.

Selectors and cluster-wide listing are not available. Nodes are the only
cluster-scoped kind that can be listed without a namespace (set kind to Node).
Results are pruned and sanitized. Use the continue token from metadata.continue
to fetch the next page.`),
		mcp.WithReadOnlyHintAnnotation(true),
		tools.NamespaceParam(false, "Namespace to list in (omit only for Node)"),
	}
	opts = append(opts, tools.ResourceTypeParams(true)...)
	opts = append(opts,
		mcp.WithNumber(tools.ParamLimit,
			mcp.Description("Maximum number of objects to return (1-500, default 100)"),
			mcp.Min(minListLimit),
			mcp.Max(maxListLimit),
		),
		mcp.WithString(paramContinueToken,
			mcp.Description("Continue token from a previous page"),
		),
	)
	return mcp.NewTool(ToolList, opts...)
}

func getTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(`Get a single Kubernetes object by name.

A namespace is required for every kind except Node.`),
		mcp.WithReadOnlyHintAnnotation(true),
		tools.NamespaceParam(false, "Namespace of the object (omit only for Node)"),
	}
	opts = append(opts, tools.ResourceTypeParams(true)...)
	opts = append(opts,
		mcp.WithString(tools.ParamName,
			mcp.Required(),
			mcp.Description("Name of the object"),
		),
	)
	return mcp.NewTool(ToolGet, opts...)
}

func deleteTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(`Delete a single Kubernetes object.

Requires approved=true. Bulk deletes and selectors are blocked.`),
		mcp.WithDestructiveHintAnnotation(true),
		tools.NamespaceParam(true, "Namespace of the object"),
	}
	opts = append(opts, tools.ResourceTypeParams(true)...)
	opts = append(opts,
		mcp.WithString(tools.ParamName,
			mcp.Required(),
			mcp.Description("Name of the object"),
		),
		tools.ApprovedParam(),
		mcp.WithNumber(paramGracePeriod,
			mcp.Description("Grace period in seconds (0-3600)"),
			mcp.Min(minGracePeriod),
			mcp.Max(maxGracePeriod),
		),
		mcp.WithString(paramPropagation,
			mcp.Description("Deletion propagation policy"),
			mcp.Enum(propagationPolicies...),
		),
	)
	return mcp.NewTool(ToolDelete, opts...)
}

func patchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(patchDescription(policy.DefaultTables())),
		mcp.WithDestructiveHintAnnotation(true),
		tools.NamespaceParam(true, "Namespace of the workload"),
	}
	opts = append(opts, tools.ResourceTypeParams(false)...)
	opts = append(opts,
		mcp.WithString(tools.ParamName,
			mcp.Required(),
			mcp.Description("Name of the workload"),
		),
		mcp.WithString(policy.ArgAction,
			mcp.Required(),
			mcp.Description("Patch action"),
			mcp.Enum(patchActions...),
		),
		tools.ApprovedParam(),
		mcp.WithNumber(policy.ArgReplicas,
			mcp.Description("Replica count for scale"),
		),
		mcp.WithString(policy.ArgContainer,
			mcp.Description("Container name for update_image"),
		),
		mcp.WithString(policy.ArgImage,
			mcp.Description("New image reference for update_image"),
		),
		mcp.WithString(policy.ArgReason,
			mcp.Description("Optional change cause recorded by rollout_restart"),
		),
	)
	return mcp.NewTool(ToolPatch, opts...)
}

// patchDescription lists the plurals each action accepts under tables.
func patchDescription(tables *policy.Tables) string {
	return fmt.Sprintf(`Apply a structured change to a workload.

Raw patch documents are not accepted. Supported actions:
  - scale: set replicas on %s
  - update_image: set the image of one container on %s
  - rollout_restart: restart the pods of %s

Requires approved=true.`,
		joinPlurals(tables.PatchPlurals(policy.ActionScale)),
		joinPlurals(tables.PatchPlurals(policy.ActionUpdateImage)),
		joinPlurals(tables.PatchPlurals(policy.ActionRolloutRestart)))
}

// joinPlurals renders ["a", "b", "c"] as "a, b or c".
func joinPlurals(plurals []string) string {
	switch len(plurals) {
	case 0:
		return "no resources"
	case 1:
		return plurals[0]
	}
	return strings.Join(plurals[:len(plurals)-1], ", ") + " or " + plurals[len(plurals)-1]
}
