package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func findAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpanAttributeBuilder(t *testing.T) {
	t.Run("empty builder", func(t *testing.T) {
		if attrs := NewSpanAttributeBuilder().Build(); len(attrs) != 0 {
			t.Errorf("expected 0 attributes, got %d", len(attrs))
		}
	})

	t.Run("skips empty values", func(t *testing.T) {
		attrs := NewSpanAttributeBuilder().
			WithNamespace("").
			WithResource("", "").
			WithDecision("", "").
			Build()
		if len(attrs) != 0 {
			t.Errorf("expected empty values to be skipped, got %v", attrs)
		}
	})

	t.Run("full", func(t *testing.T) {
		attrs := NewSpanAttributeBuilder().
			WithTool("k8s_delete").
			WithVerb("delete").
			WithNamespace("prod").
			WithResource("deployments", "api").
			WithApproval(false).
			WithDecision("ApprovalRequired", "builtin-v1").
			Build()

		if v, ok := findAttr(attrs, SpanAttrDenial); !ok || v.AsString() != "ApprovalRequired" {
			t.Errorf("expected denial attribute, got %v", v)
		}
		if v, ok := findAttr(attrs, SpanAttrApproved); !ok || v.AsBool() {
			t.Errorf("expected approved=false attribute, got %v", v)
		}
		if v, ok := findAttr(attrs, SpanAttrResourceName); !ok || v.AsString() != "api" {
			t.Errorf("expected resource name attribute, got %v", v)
		}
	})
}

func TestStartToolSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartToolSpan(context.Background(), "k8s_get",
		NewSpanAttributeBuilder().WithVerb("get").Build()...)
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "tool.k8s_get" {
		t.Errorf("expected span name tool.k8s_get, got %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span, got %v", s.SpanKind())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("expected ok status, got %v", s.Status().Code)
	}
	if v, ok := findAttr(s.Attributes(), SpanAttrVerb); !ok || v.AsString() != "get" {
		t.Errorf("expected verb attribute, got %v", v)
	}
}

func TestStartK8sSpan_Error(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartK8sSpan(context.Background(), "delete", "deployments", "prod")
	SetSpanError(span, errors.New("forbidden"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "k8s.delete" {
		t.Errorf("expected span name k8s.delete, got %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", s.SpanKind())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if v, ok := findAttr(s.Attributes(), SpanAttrNamespace); !ok || v.AsString() != "prod" {
		t.Errorf("expected namespace attribute, got %v", v)
	}
}

func TestSetSpanError_Nil(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartK8sSpan(context.Background(), "get", "pods", "default")
	SetSpanError(span, nil)
	span.End()

	if got := recorder.Ended()[0].Status().Code; got != codes.Unset {
		t.Errorf("expected unset status for nil error, got %v", got)
	}
}

func TestSpanContextString(t *testing.T) {
	if got := SpanContextString(context.Background()); got != "" {
		t.Errorf("expected empty string without span, got %q", got)
	}

	setupRecorder(t)
	ctx, span := StartToolSpan(context.Background(), "ping")
	defer span.End()

	want := "trace_id=" + span.SpanContext().TraceID().String() + " span_id=" + span.SpanContext().SpanID().String()
	if got := SpanContextString(ctx); got != want {
		t.Errorf("SpanContextString = %q, want %q", got, want)
	}
}
