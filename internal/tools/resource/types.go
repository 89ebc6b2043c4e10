package resource

import (
	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools"
)

// Tool names.
const (
	ToolList   = "k8s_list"
	ToolGet    = "k8s_get"
	ToolDelete = "k8s_delete"
	ToolPatch  = "k8s_patch"
)

// Bounds for the numeric arguments.
const (
	minListLimit       = 1
	maxListLimit       = 500
	minGracePeriod     = 0
	maxGracePeriod     = 3600
	paramGracePeriod   = "grace_period_seconds"
	paramPropagation   = "propagation_policy"
	paramContinueToken = "continue"
)

var propagationPolicies = []string{"Foreground", "Background", "Orphan"}

// coordinateFromArgs reads group, version, plural, kind, namespace and name.
func coordinateFromArgs(args map[string]interface{}) k8s.ResourceCoordinate {
	return k8s.ResourceCoordinate{
		Group:     tools.StringArg(args, tools.ParamGroup),
		Version:   tools.StringArg(args, tools.ParamVersion),
		Plural:    tools.StringArg(args, tools.ParamPlural),
		Kind:      tools.StringArg(args, tools.ParamKind),
		Namespace: tools.StringArg(args, tools.ParamNamespace),
		Name:      tools.StringArg(args, tools.ParamName),
	}
}

// target describes coord to the gate.
func target(verb string, coord k8s.ResourceCoordinate) tools.Target {
	return tools.Target{
		Verb:      verb,
		Kind:      coord.Kind,
		Plural:    coord.Plural,
		Namespace: coord.Namespace,
		Name:      coord.Name,
	}
}

// patchActions lists the accepted patch actions for the tool schema.
var patchActions = []string{
	string(policy.ActionScale),
	string(policy.ActionUpdateImage),
	string(policy.ActionRolloutRestart),
}
