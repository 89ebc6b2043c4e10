package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPrometheusHandler_ExposesAgentMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		ServiceName:     "mcp-k8s-agent-test",
		ServiceVersion:  "test",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	provider.Metrics().RecordPolicyDecision(ctx, "delete", false, "ApprovalRequired")
	provider.Metrics().RecordK8sOperation(ctx, "list", "pods", "default", StatusSuccess, 5*time.Millisecond)
	provider.Metrics().RecordSanitization(ctx, map[string]int{"bearer": 1}, false, 3)

	handler := provider.PrometheusHandler()
	if handler == nil {
		t.Fatal("expected a Prometheus handler")
	}

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		"policy_decisions_total",
		`denial_kind="ApprovalRequired"`,
		"kubernetes_operations_total",
		`resource_class="pod"`,
		"sanitizer_redactions_total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected scrape output to contain %q", want)
		}
	}
	if strings.Contains(text, `namespace="default"`) {
		t.Error("namespace label must not appear without detailed labels")
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected no-op metrics on a disabled provider")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("expected no Prometheus handler on a disabled provider")
	}
	if provider.AuditLogger() == nil {
		t.Error("expected an audit logger")
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("shutdown of disabled provider failed: %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, MetricsExporter: "graphite"})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}
