package k8s

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// builtinResource is a fallback mapping entry used when discovery cannot
// resolve a plural.
type builtinResource struct {
	gvr        schema.GroupVersionResource
	kind       string
	namespaced bool
}

// initBuiltinResources returns the plural fallback table. Keys are plurals
// only, since tools always address resources by plural.
func initBuiltinResources() map[string]builtinResource {
	core := func(plural, kind string, namespaced bool) builtinResource {
		return builtinResource{gvr: schema.GroupVersionResource{Version: "v1", Resource: plural}, kind: kind, namespaced: namespaced}
	}
	grouped := func(group, plural, kind string, namespaced bool) builtinResource {
		return builtinResource{gvr: schema.GroupVersionResource{Group: group, Version: "v1", Resource: plural}, kind: kind, namespaced: namespaced}
	}

	return map[string]builtinResource{
		// Core/v1 resources
		"pods":                   core("pods", "Pod", true),
		"services":               core("services", "Service", true),
		"configmaps":             core("configmaps", "ConfigMap", true),
		"secrets":                core("secrets", "Secret", true),
		"serviceaccounts":        core("serviceaccounts", "ServiceAccount", true),
		"persistentvolumeclaims": core("persistentvolumeclaims", "PersistentVolumeClaim", true),
		"events":                 core("events", "Event", true),
		"endpoints":              core("endpoints", "Endpoints", true),
		"resourcequotas":         core("resourcequotas", "ResourceQuota", true),
		"limitranges":            core("limitranges", "LimitRange", true),
		"namespaces":             core("namespaces", "Namespace", false),
		"nodes":                  core("nodes", "Node", false),
		"persistentvolumes":      core("persistentvolumes", "PersistentVolume", false),

		// Apps/v1 resources
		"deployments":  grouped("apps", "deployments", "Deployment", true),
		"replicasets":  grouped("apps", "replicasets", "ReplicaSet", true),
		"daemonsets":   grouped("apps", "daemonsets", "DaemonSet", true),
		"statefulsets": grouped("apps", "statefulsets", "StatefulSet", true),

		// Batch resources
		"jobs":     grouped("batch", "jobs", "Job", true),
		"cronjobs": grouped("batch", "cronjobs", "CronJob", true),

		// Networking resources
		"ingresses":       grouped("networking.k8s.io", "ingresses", "Ingress", true),
		"networkpolicies": grouped("networking.k8s.io", "networkpolicies", "NetworkPolicy", true),

		// RBAC resources
		"roles":               grouped("rbac.authorization.k8s.io", "roles", "Role", true),
		"rolebindings":        grouped("rbac.authorization.k8s.io", "rolebindings", "RoleBinding", true),
		"clusterroles":        grouped("rbac.authorization.k8s.io", "clusterroles", "ClusterRole", false),
		"clusterrolebindings": grouped("rbac.authorization.k8s.io", "clusterrolebindings", "ClusterRoleBinding", false),

		// Other well-known resources
		"leases":                   grouped("coordination.k8s.io", "leases", "Lease", true),
		"endpointslices":           grouped("discovery.k8s.io", "endpointslices", "EndpointSlice", true),
		"poddisruptionbudgets":     grouped("policy", "poddisruptionbudgets", "PodDisruptionBudget", true),
		"horizontalpodautoscalers": grouped("autoscaling", "horizontalpodautoscalers", "HorizontalPodAutoscaler", true),
	}
}

// lookupBuiltin finds plural in the fallback table. A non-empty group must
// match the entry's group.
func lookupBuiltin(table map[string]builtinResource, group, plural string) (builtinResource, bool) {
	entry, ok := table[strings.ToLower(strings.TrimSpace(plural))]
	if !ok {
		return builtinResource{}, false
	}
	if group != "" && !strings.EqualFold(group, entry.gvr.Group) {
		return builtinResource{}, false
	}
	return entry, true
}
