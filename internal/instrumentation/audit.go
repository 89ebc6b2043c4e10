package instrumentation

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
)

// ToolInvocation is the audit record of one tool call.
type ToolInvocation struct {
	ID   string
	Tool string
	Verb string

	Namespace    string
	ResourceType string
	ResourceName string
	Approved     bool

	// DenialKind is set when the gate refused the call.
	DenialKind    string
	PolicyVersion string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	Redactions int
	Truncated  bool

	TraceID string
	SpanID  string
}

// NewToolInvocation starts an audit record for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		ID:        uuid.NewString(),
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithVerb sets the verb the gate evaluated.
func (t *ToolInvocation) WithVerb(verb string) *ToolInvocation {
	t.Verb = verb
	return t
}

// WithResource sets the target of the call.
func (t *ToolInvocation) WithResource(namespace, resourceType, resourceName string) *ToolInvocation {
	t.Namespace = namespace
	t.ResourceType = resourceType
	t.ResourceName = resourceName
	return t
}

// WithApproval records the caller's approval flag.
func (t *ToolInvocation) WithApproval(approved bool) *ToolInvocation {
	t.Approved = approved
	return t
}

// WithDecision records the gate outcome.
func (t *ToolInvocation) WithDecision(denialKind, policyVersion string) *ToolInvocation {
	t.DenialKind = denialKind
	t.PolicyVersion = policyVersion
	return t
}

// WithSanitization records what the sanitizer did to the output.
func (t *ToolInvocation) WithSanitization(redactions int, truncated bool) *ToolInvocation {
	t.Redactions = redactions
	t.Truncated = truncated
	return t
}

// WithSpanContext copies trace and span IDs from ctx.
func (t *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		t.TraceID = sc.TraceID().String()
		t.SpanID = sc.SpanID().String()
	}
	return t
}

// Complete finishes the record.
func (t *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	t.Duration = time.Since(t.StartTime)
	t.Success = success
	if err != nil {
		t.Error = err.Error()
	}
	return t
}

// CompleteSuccess finishes a successful record.
func (t *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return t.Complete(true, nil)
}

// CompleteWithError finishes a failed record.
func (t *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return t.Complete(false, err)
}

// Status is denied, success or error.
func (t *ToolInvocation) Status() string {
	switch {
	case t.DenialKind != "":
		return StatusDenied
	case t.Success:
		return StatusSuccess
	default:
		return StatusError
	}
}

// LogAttrs returns bounded-cardinality attributes for operational logs.
func (t *ToolInvocation) LogAttrs() []slog.Attr {
	return []slog.Attr{
		logging.Tool(t.Tool),
		logging.Verb(t.Verb),
		slog.String(attrResourceClass, ClassifyResourceType(t.ResourceType)),
		logging.Status(t.Status()),
		logging.Denial(t.DenialKind),
		logging.Duration(t.Duration),
		slog.Bool("success", t.Success),
	}
}

// LogAuditAttrs returns the full record for the audit trail.
func (t *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", t.ID),
		logging.Tool(t.Tool),
		logging.Verb(t.Verb),
		logging.Namespace(t.Namespace),
		logging.ResourceType(t.ResourceType),
		logging.ResourceName(t.ResourceName),
		slog.Bool("approved", t.Approved),
		logging.Status(t.Status()),
		logging.Denial(t.DenialKind),
		logging.PolicyVersion(t.PolicyVersion),
		logging.Redactions(t.Redactions),
		logging.Truncated(t.Truncated),
		logging.Duration(t.Duration),
	}
	if t.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, logging.SanitizeHost(t.Error)))
	}
	if t.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", t.TraceID), slog.String("span_id", t.SpanID))
	}
	return attrs
}

// AuditLogger writes tool invocation records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger writes JSON to stderr.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.New(logging.NewHandler(logging.FormatJSON, slog.LevelInfo, os.Stderr))
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes one audit record. Denied and failed calls are
// logged at warn level.
func (a *AuditLogger) LogToolInvocation(t *ToolInvocation) {
	if a == nil || t == nil {
		return
	}
	level := slog.LevelInfo
	if t.Status() != StatusSuccess {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "tool invocation", t.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace ID in ctx, or "".
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
