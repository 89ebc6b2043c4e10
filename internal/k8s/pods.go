package k8s

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// PodLogs retrieves logs from a pod container. At most MaxLogBytes are read.
func (b *ClusterBackend) PodLogs(ctx context.Context, namespace, pod string, opts LogOptions) (string, error) {
	if namespace == "" || pod == "" {
		return "", fmt.Errorf("%w: pod logs need a namespace and a pod name", ErrInvalidCoordinate)
	}

	c, err := b.getClients()
	if err != nil {
		return "", err
	}

	b.debug("kubernetes operation", "operation", "pod_logs", "namespace", namespace, "pod", pod, "container", opts.Container)

	limit := int64(MaxLogBytes)
	logOpts := &corev1.PodLogOptions{
		Container:  opts.Container,
		Previous:   opts.Previous,
		Timestamps: opts.Timestamps,
		TailLines:  opts.TailLines,
		LimitBytes: &limit,
	}

	stream, err := c.typed.CoreV1().Pods(namespace).GetLogs(pod, logOpts).Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for pod %s/%s: %w", namespace, pod, err)
	}
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(io.LimitReader(stream, limit))
	if err != nil {
		return "", fmt.Errorf("failed to read logs for pod %s/%s: %w", namespace, pod, err)
	}
	return string(data), nil
}

// Events lists core events in one namespace.
func (b *ClusterBackend) Events(ctx context.Context, namespace string, limit int64) (Response, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%w: events need a namespace", ErrInvalidCoordinate)
	}

	c, err := b.getClients()
	if err != nil {
		return nil, err
	}

	b.debug("kubernetes operation", "operation", "events", "namespace", namespace, "limit", limit)

	events, err := c.typed.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list events in namespace %s: %w", namespace, err)
	}

	list, err := eventsToUnstructured(events)
	if err != nil {
		return nil, err
	}
	return NewCollectionResponse(list), nil
}

// eventsToUnstructured converts a typed EventList into the list shape every
// other backend call returns.
func eventsToUnstructured(events *corev1.EventList) (*unstructured.UnstructuredList, error) {
	list := &unstructured.UnstructuredList{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "EventList",
		"metadata": map[string]interface{}{
			"resourceVersion": events.ResourceVersion,
			"continue":        events.Continue,
		},
	}}

	for i := range events.Items {
		obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&events.Items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert event: %w", err)
		}
		item := unstructured.Unstructured{Object: obj}
		item.SetAPIVersion("v1")
		item.SetKind("Event")
		list.Items = append(list.Items, item)
	}
	return list, nil
}
