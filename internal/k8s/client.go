package k8s

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// Backend performs the cluster calls behind each tool. It is only ever
// invoked after the policy gate has allowed the request.
type Backend interface {
	// Get retrieves a single object.
	Get(ctx context.Context, coord ResourceCoordinate) (Response, error)

	// List retrieves objects of one resource type in one namespace.
	List(ctx context.Context, coord ResourceCoordinate, opts ListOptions) (Response, error)

	// Delete removes a single object.
	Delete(ctx context.Context, coord ResourceCoordinate, opts DeleteOptions) (Response, error)

	// Patch applies a validated patch intent to a single object.
	Patch(ctx context.Context, coord ResourceCoordinate, intent policy.PatchIntent) (Response, error)

	// Events lists core events in a namespace.
	Events(ctx context.Context, namespace string, limit int64) (Response, error)

	// PodLogs returns the logs of one pod container.
	PodLogs(ctx context.Context, namespace, pod string, opts LogOptions) (string, error)

	// Ready reports whether the cluster clients have been initialized.
	Ready() bool
}

// ResourceCoordinate addresses a resource type, and optionally one object.
type ResourceCoordinate struct {
	Group       string `json:"group,omitempty"`
	Version     string `json:"version,omitempty"`
	Plural      string `json:"plural"`
	Namespace   string `json:"namespace,omitempty"`
	Name        string `json:"name,omitempty"`
	Subresource string `json:"subresource,omitempty"`

	// Kind is informational; resolution uses Group, Version and Plural.
	Kind string `json:"kind,omitempty"`
}

// APIVersion renders Group and Version the way apiVersion fields do.
func (c ResourceCoordinate) APIVersion() string {
	if c.Group == "" {
		return c.Version
	}
	return c.Group + "/" + c.Version
}

// String renders the coordinate for logs and error messages.
func (c ResourceCoordinate) String() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(c.Plural))
	if c.Group != "" {
		b.WriteString(".")
		b.WriteString(c.Group)
	}
	if c.Namespace != "" || c.Name != "" {
		fmt.Fprintf(&b, " %s/%s", c.Namespace, c.Name)
	}
	if c.Subresource != "" {
		b.WriteString(" [")
		b.WriteString(c.Subresource)
		b.WriteString("]")
	}
	return b.String()
}

// ListOptions provides configuration for list operations. Selectors are not
// offered: list tools address one namespace and one resource type.
type ListOptions struct {
	// Maximum number of items to return (0 = server default)
	Limit int64 `json:"limit,omitempty"`

	// Continue token from a previous request
	Continue string `json:"continue,omitempty"`
}

// DeleteOptions configures a single-object delete.
type DeleteOptions struct {
	GracePeriodSeconds *int64                      `json:"gracePeriodSeconds,omitempty"`
	PropagationPolicy  *metav1.DeletionPropagation `json:"propagationPolicy,omitempty"`
}

// LogOptions configures log retrieval.
type LogOptions struct {
	Container  string `json:"container,omitempty"`
	Previous   bool   `json:"previous,omitempty"`
	Timestamps bool   `json:"timestamps,omitempty"`
	TailLines  *int64 `json:"tailLines,omitempty"`
}

// Logger is the logging interface used by the backend.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
