package instrumentation

import "strings"

// Resource classes used as a low-cardinality stand-in for resource_type.
const (
	ResourceClassWorkload   = "workload"
	ResourceClassPod        = "pod"
	ResourceClassConfig     = "config"
	ResourceClassNetworking = "networking"
	ResourceClassRBAC       = "rbac"
	ResourceClassCluster    = "cluster"
	ResourceClassEvent      = "event"
	ResourceClassCustom     = "custom"
	ResourceClassNone       = "none"
)

var resourceClasses = map[string]string{
	"deployments":              ResourceClassWorkload,
	"statefulsets":             ResourceClassWorkload,
	"daemonsets":               ResourceClassWorkload,
	"replicasets":              ResourceClassWorkload,
	"jobs":                     ResourceClassWorkload,
	"cronjobs":                 ResourceClassWorkload,
	"horizontalpodautoscalers": ResourceClassWorkload,
	"poddisruptionbudgets":     ResourceClassWorkload,

	"pods": ResourceClassPod,

	"configmaps":             ResourceClassConfig,
	"secrets":                ResourceClassConfig,
	"serviceaccounts":        ResourceClassConfig,
	"persistentvolumeclaims": ResourceClassConfig,
	"resourcequotas":         ResourceClassConfig,
	"limitranges":            ResourceClassConfig,

	"services":        ResourceClassNetworking,
	"endpoints":       ResourceClassNetworking,
	"endpointslices":  ResourceClassNetworking,
	"ingresses":       ResourceClassNetworking,
	"networkpolicies": ResourceClassNetworking,

	"roles":               ResourceClassRBAC,
	"rolebindings":        ResourceClassRBAC,
	"clusterroles":        ResourceClassRBAC,
	"clusterrolebindings": ResourceClassRBAC,

	"nodes":             ResourceClassCluster,
	"namespaces":        ResourceClassCluster,
	"persistentvolumes": ResourceClassCluster,
	"leases":            ResourceClassCluster,

	"events": ResourceClassEvent,
}

// ClassifyResourceType maps a plural onto a small fixed set of classes so
// metrics stay bounded when agents touch custom resources.
//
//	ClassifyResourceType("Deployments")        // "workload"
//	ClassifyResourceType("certificates")       // "custom"
//	ClassifyResourceType("")                   // "none"
func ClassifyResourceType(plural string) string {
	p := strings.ToLower(strings.TrimSpace(plural))
	if p == "" {
		return ResourceClassNone
	}
	if class, ok := resourceClasses[p]; ok {
		return class
	}
	return ResourceClassCustom
}

var knownVerbs = map[string]struct{}{
	"list": {}, "get": {}, "events": {}, "pod_logs": {}, "delete": {}, "patch": {},
	"create": {}, "apply": {}, "update": {}, "replace": {}, "scale": {}, "restart": {},
	"rollout_restart": {}, "cordon": {}, "drain": {}, "taint": {}, "label": {}, "annotate": {},
}

// ClassifyVerb keeps verb labels bounded. Unknown verbs come from callers and
// are reported as "other"; an empty verb as "none".
func ClassifyVerb(verb string) string {
	v := strings.ToLower(strings.TrimSpace(verb))
	if v == "" {
		return "none"
	}
	if _, ok := knownVerbs[v]; ok {
		return v
	}
	return "other"
}
