package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod        = "method"
	attrPath          = "path"
	attrStatus        = "status"
	attrTool          = "tool"
	attrVerb          = "verb"
	attrDecision      = "decision"
	attrDenialKind    = "denial_kind"
	attrOperation     = "operation"
	attrResourceType  = "resource_type"
	attrResourceClass = "resource_class"
	attrNamespace     = "namespace"
	attrLabel         = "label"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics records the agent's metrics. All methods are safe on a Metrics
// built from a no-op meter.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	policyDecisionsTotal metric.Int64Counter

	toolInvocationsTotal   metric.Int64Counter
	toolInvocationDuration metric.Float64Histogram

	k8sOperationsTotal   metric.Int64Counter
	k8sOperationDuration metric.Float64Histogram

	redactionsTotal    metric.Int64Counter
	truncationsTotal   metric.Int64Counter
	sanitizedLinesHist metric.Int64Histogram

	// detailedLabels adds namespace and resource_type to backend metrics.
	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error
	if m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	if m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	if m.policyDecisionsTotal, err = meter.Int64Counter(
		"policy_decisions_total",
		metric.WithDescription("Policy gate decisions by verb, outcome and denial kind"),
		metric.WithUnit("{decision}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create policy_decisions_total counter: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("MCP tool invocations by tool and status"),
		metric.WithUnit("{invocation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	if m.toolInvocationDuration, err = meter.Float64Histogram(
		"tool_invocation_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create tool_invocation_duration_seconds histogram: %w", err)
	}

	if m.k8sOperationsTotal, err = meter.Int64Counter(
		"kubernetes_operations_total",
		metric.WithDescription("Total number of Kubernetes operations"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operations_total counter: %w", err)
	}

	if m.k8sOperationDuration, err = meter.Float64Histogram(
		"kubernetes_operation_duration_seconds",
		metric.WithDescription("Kubernetes operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create kubernetes_operation_duration_seconds histogram: %w", err)
	}

	if m.redactionsTotal, err = meter.Int64Counter(
		"sanitizer_redactions_total",
		metric.WithDescription("Values replaced by the output sanitizer, by rule label"),
		metric.WithUnit("{redaction}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sanitizer_redactions_total counter: %w", err)
	}

	if m.truncationsTotal, err = meter.Int64Counter(
		"sanitizer_truncations_total",
		metric.WithDescription("Tool outputs cut at the line limit"),
		metric.WithUnit("{output}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sanitizer_truncations_total counter: %w", err)
	}

	if m.sanitizedLinesHist, err = meter.Int64Histogram(
		"sanitizer_output_lines",
		metric.WithDescription("Line count of tool outputs before truncation"),
		metric.WithUnit("{line}"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 5000),
	); err != nil {
		return nil, fmt.Errorf("failed to create sanitizer_output_lines histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPolicyDecision counts one gate decision. denialKind is empty for
// allowed requests.
func (m *Metrics) RecordPolicyDecision(ctx context.Context, verb string, allowed bool, denialKind string) {
	if m == nil || m.policyDecisionsTotal == nil {
		return
	}
	decision := DecisionAllowed
	if !allowed {
		decision = DecisionDenied
	}
	if denialKind == "" {
		denialKind = "none"
	}
	m.policyDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrVerb, ClassifyVerb(verb)),
		attribute.String(attrDecision, decision),
		attribute.String(attrDenialKind, denialKind),
	))
}

// RecordToolInvocation records one tool call. status is success, error or denied.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolInvocationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordK8sOperation records a backend call. status is "success" or a
// backend error kind.
//
// Without detailed labels only operation, status and the resource class are
// recorded. With them, namespace and resource_type are added; keep that off
// in clusters with many namespaces.
func (m *Metrics) RecordK8sOperation(ctx context.Context, operation, resourceType, namespace, status string, duration time.Duration) {
	if m == nil || m.k8sOperationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrResourceClass, ClassifyResourceType(resourceType)),
	}
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrResourceType, resourceType),
			attribute.String(attrNamespace, namespace),
		)
	}

	m.k8sOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.k8sOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSanitization records the report of one sanitizer pass.
func (m *Metrics) RecordSanitization(ctx context.Context, redactions map[string]int, truncated bool, originalLines int) {
	if m == nil || m.redactionsTotal == nil {
		return
	}
	for label, n := range redactions {
		if n <= 0 {
			continue
		}
		m.redactionsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrLabel, label)))
	}
	if truncated {
		m.truncationsTotal.Add(ctx, 1)
	}
	m.sanitizedLinesHist.Record(ctx, int64(originalLines))
}
