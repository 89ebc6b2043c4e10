// Package k8s is the cluster backend behind the agent tools.
//
// The Backend interface covers the few calls the tools make: get, list,
// delete and patch of one resource type in one namespace, plus events and
// pod logs. ClusterBackend implements it with client-go. Clients are built
// on first use from a kubeconfig or the in-cluster service account, and
// resource plurals are resolved through cached discovery with a builtin
// table as fallback.
//
// Every call returns a Response, which is either a SingleResponse or a
// CollectionResponse. Failures can be mapped to a stable category with
// ClassifyError:
//
//	resp, err := backend.Get(ctx, k8s.ResourceCoordinate{
//		Version:   "v1",
//		Plural:    "pods",
//		Namespace: "default",
//		Name:      "web-0",
//	})
//	if err != nil {
//		return k8s.ClassifyError(err) // ERROR: not_found: pods "web-0" not found
//	}
//
// Patch only accepts intents produced by the policy package. BuildPatch turns
// an intent into a merge or strategic merge patch body.
package k8s
