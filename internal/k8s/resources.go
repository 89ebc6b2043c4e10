package k8s

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// Sentinel errors returned before any API request is made.
var (
	ErrUnknownResource   = errors.New("unknown resource type")
	ErrInvalidCoordinate = errors.New("invalid resource coordinate")
	ErrIntentMismatch    = errors.New("patch intent does not match the target resource")
)

// Get retrieves a specific resource by name and namespace.
func (b *ClusterBackend) Get(ctx context.Context, coord ResourceCoordinate) (Response, error) {
	c, ri, err := b.resourceInterface(coord)
	if err != nil {
		return nil, err
	}
	if coord.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCoordinate)
	}

	b.debug("kubernetes operation", "operation", "get", "resource", coord.String())

	obj, err := ri.Get(ctx, coord.Name, metav1.GetOptions{}, subresources(coord)...)
	if err != nil {
		b.afterError(c, err)
		return nil, fmt.Errorf("failed to get %s: %w", coord, err)
	}
	return NewSingleResponse(obj), nil
}

// List retrieves resources of one type in one namespace.
func (b *ClusterBackend) List(ctx context.Context, coord ResourceCoordinate, opts ListOptions) (Response, error) {
	c, ri, err := b.resourceInterface(coord)
	if err != nil {
		return nil, err
	}

	b.debug("kubernetes operation", "operation", "list", "resource", coord.String(), "limit", opts.Limit)

	list, err := ri.List(ctx, metav1.ListOptions{Limit: opts.Limit, Continue: opts.Continue})
	if err != nil {
		b.afterError(c, err)
		return nil, fmt.Errorf("failed to list %s: %w", coord, err)
	}

	resp := NewCollectionResponse(list)
	b.debug("kubernetes list complete", "resource", coord.String(), "items", len(list.Items), "more", resp.Continue() != "")
	return resp, nil
}

// Delete removes one object and returns a Status describing the deletion.
func (b *ClusterBackend) Delete(ctx context.Context, coord ResourceCoordinate, opts DeleteOptions) (Response, error) {
	c, ri, err := b.resourceInterface(coord)
	if err != nil {
		return nil, err
	}
	if coord.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCoordinate)
	}

	b.debug("kubernetes operation", "operation", "delete", "resource", coord.String())

	deleteOpts := metav1.DeleteOptions{
		GracePeriodSeconds: opts.GracePeriodSeconds,
		PropagationPolicy:  opts.PropagationPolicy,
	}
	if err := ri.Delete(ctx, coord.Name, deleteOpts); err != nil {
		b.afterError(c, err)
		return nil, fmt.Errorf("failed to delete %s: %w", coord, err)
	}

	return NewSingleResponse(deletedStatus(coord)), nil
}

// Patch applies a validated intent to one object.
func (b *ClusterBackend) Patch(ctx context.Context, coord ResourceCoordinate, intent policy.PatchIntent) (Response, error) {
	if intent == nil {
		return nil, fmt.Errorf("%w: no intent", ErrIntentMismatch)
	}
	if !strings.EqualFold(strings.TrimSpace(coord.Plural), intent.TargetPlural()) {
		return nil, fmt.Errorf("%w: intent targets %q, request targets %q", ErrIntentMismatch, intent.TargetPlural(), coord.Plural)
	}

	c, ri, err := b.resourceInterface(coord)
	if err != nil {
		return nil, err
	}
	if coord.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCoordinate)
	}

	patchType, data, err := BuildPatch(intent, b.now())
	if err != nil {
		return nil, err
	}

	b.debug("kubernetes operation", "operation", "patch", "resource", coord.String(), "action", intent.Action(), "patchType", patchType)

	obj, err := ri.Patch(ctx, coord.Name, patchType, data, metav1.PatchOptions{FieldManager: b.fieldMgr})
	if err != nil {
		b.afterError(c, err)
		return nil, fmt.Errorf("failed to patch %s: %w", coord, err)
	}
	return NewSingleResponse(obj), nil
}

// resolvedResource is what a coordinate maps to on the cluster.
type resolvedResource struct {
	gvr        schema.GroupVersionResource
	kind       string
	namespaced bool
}

// resourceInterface resolves coord and returns the dynamic interface scoped
// to its namespace. The resolved resource is checked against the policy
// tables before any client is returned, because discovery also accepts
// singular names and the caller's kind is only a label. Namespaced resources
// always need a namespace, so a missing one can never widen a request to
// every namespace.
func (b *ClusterBackend) resourceInterface(coord ResourceCoordinate) (*clusterClients, dynamic.ResourceInterface, error) {
	c, err := b.getClients()
	if err != nil {
		return nil, nil, err
	}

	res, err := b.resolve(c, coord)
	if err != nil {
		return nil, nil, err
	}

	if err := b.tables.CheckResolvedResource(res.gvr.Resource, res.kind, res.namespaced); err != nil {
		b.debug("resolved resource refused by policy", "resource", res.gvr.String(), "kind", res.kind)
		return nil, nil, err
	}
	if kind := strings.TrimSpace(coord.Kind); kind != "" && res.kind != "" && !strings.EqualFold(kind, res.kind) {
		return nil, nil, fmt.Errorf("%w: kind %q does not match resource %s (kind %s)", ErrInvalidCoordinate, kind, res.gvr.Resource, res.kind)
	}

	if !res.namespaced {
		return c, c.dynamic.Resource(res.gvr), nil
	}
	if coord.Namespace == "" {
		return nil, nil, fmt.Errorf("%w: %s is namespaced and needs a namespace", ErrInvalidCoordinate, res.gvr.Resource)
	}
	return c, c.dynamic.Resource(res.gvr).Namespace(coord.Namespace), nil
}

// resolve determines the GroupVersionResource, kind and scope for coord.
// Discovery is consulted first; the builtin table covers plurals discovery
// cannot find.
func (b *ClusterBackend) resolve(c *clusterClients, coord ResourceCoordinate) (resolvedResource, error) {
	plural := strings.ToLower(strings.TrimSpace(coord.Plural))
	if plural == "" {
		return resolvedResource{}, fmt.Errorf("%w: plural is required", ErrInvalidCoordinate)
	}
	group := strings.TrimSpace(coord.Group)
	version := strings.TrimSpace(coord.Version)
	partial := schema.GroupVersionResource{Group: group, Version: version, Resource: plural}

	if c.mapper != nil {
		res, err := resolveWithMapper(c.mapper, partial)
		if err == nil {
			return res, nil
		}
		b.debug("discovery could not resolve resource, trying builtin table", "resource", partial.String(), "error", err)
	}

	if entry, ok := lookupBuiltin(b.builtin, group, plural); ok {
		gvr := entry.gvr
		if version != "" {
			gvr.Version = version
		}
		return resolvedResource{gvr: gvr, kind: entry.kind, namespaced: entry.namespaced}, nil
	}

	return resolvedResource{}, fmt.Errorf("%w: %s", ErrUnknownResource, partial.String())
}

// resolveWithMapper asks the mapper for the full resource, its kind and its scope.
func resolveWithMapper(mapper meta.RESTMapper, partial schema.GroupVersionResource) (resolvedResource, error) {
	gvr, err := mapper.ResourceFor(partial)
	if err != nil {
		return resolvedResource{}, err
	}
	gvk, err := mapper.KindFor(gvr)
	if err != nil {
		return resolvedResource{}, err
	}
	mapping, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return resolvedResource{}, err
	}
	return resolvedResource{
		gvr:        gvr,
		kind:       gvk.Kind,
		namespaced: mapping.Scope.Name() == meta.RESTScopeNameNamespace,
	}, nil
}

// afterError drops cached state that err shows to be stale. A NotFound
// clears cached discovery so newly installed resources can be found; an
// Unauthorized drops the clients so rotated credentials are reloaded.
func (b *ClusterBackend) afterError(c *clusterClients, err error) {
	if apierrors.IsUnauthorized(err) {
		b.debug("dropping cluster clients after unauthorized response")
		b.clients.Reset()
		return
	}
	if c != nil && c.resetMapper != nil && apierrors.IsNotFound(err) && !namedNotFound(err) {
		c.resetMapper()
	}
}

// namedNotFound reports whether a NotFound names a missing object rather than
// a missing resource type.
func namedNotFound(err error) bool {
	var status apierrors.APIStatus
	if !errors.As(err, &status) {
		return false
	}
	details := status.Status().Details
	return details != nil && details.Name != ""
}

func subresources(coord ResourceCoordinate) []string {
	if coord.Subresource == "" {
		return nil
	}
	return []string{coord.Subresource}
}

// deletedStatus builds the Status object reported for a successful delete.
func deletedStatus(coord ResourceCoordinate) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Status",
		"status":     metav1.StatusSuccess,
		"message":    "delete accepted",
		"details": map[string]interface{}{
			"name":  coord.Name,
			"group": coord.Group,
			"kind":  coord.Plural,
		},
	}}
}
