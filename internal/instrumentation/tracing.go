package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for agent spans.
const TracerName = "github.com/giantswarm/mcp-k8s-agent"

// Span attribute keys.
const (
	SpanAttrTool          = "mcp.tool"
	SpanAttrVerb          = "mcp.verb"
	SpanAttrApproved      = "mcp.approved"
	SpanAttrDenial        = "mcp.policy.denial"
	SpanAttrPolicyVersion = "mcp.policy.version"
	SpanAttrRedactions    = "mcp.sanitizer.redactions"
	SpanAttrNamespace     = "k8s.namespace"
	SpanAttrResourceType  = "k8s.resource_type"
	SpanAttrResourceName  = "k8s.resource_name"
	SpanAttrOperation     = "k8s.operation"
)

// SpanAttributeBuilder collects span attributes with consistent keys.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

func (b *SpanAttributeBuilder) WithVerb(verb string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrVerb, verb))
	return b
}

// WithNamespace adds the namespace when it is set.
func (b *SpanAttributeBuilder) WithNamespace(namespace string) *SpanAttributeBuilder {
	if namespace != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrNamespace, namespace))
	}
	return b
}

// WithResource adds the resource type and name when they are set.
func (b *SpanAttributeBuilder) WithResource(resourceType, resourceName string) *SpanAttributeBuilder {
	if resourceType != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if resourceName != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceName, resourceName))
	}
	return b
}

func (b *SpanAttributeBuilder) WithApproval(approved bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrApproved, approved))
	return b
}

// WithDecision adds the policy version and, for denials, the denial kind.
func (b *SpanAttributeBuilder) WithDecision(denialKind, policyVersion string) *SpanAttributeBuilder {
	if denialKind != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrDenial, denialKind))
	}
	if policyVersion != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrPolicyVersion, policyVersion))
	}
	return b
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartToolSpan starts a server span named "tool.<name>".
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, attribute.String(SpanAttrTool, toolName))
	all = append(all, attrs...)

	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "tool."+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartK8sSpan starts a client span named "k8s.<operation>".
func StartK8sSpan(ctx context.Context, operation, resourceType, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := NewSpanAttributeBuilder().WithNamespace(namespace).WithResource(resourceType, "").Build()
	all = append(all, attribute.String(SpanAttrOperation, operation))
	all = append(all, attrs...)

	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "k8s."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// SpanContextString returns "trace_id=X span_id=Y", or "" without a valid span.
func SpanContextString(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return "trace_id=" + sc.TraceID().String() + " span_id=" + sc.SpanID().String()
}
