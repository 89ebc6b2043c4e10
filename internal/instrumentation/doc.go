// Package instrumentation provides OpenTelemetry metrics, tracing and the
// audit trail for the agent.
//
// # Metrics
//
//   - policy_decisions_total: gate decisions by verb, decision and denial_kind
//   - tool_invocations_total, tool_invocation_duration_seconds: by tool and status
//   - kubernetes_operations_total, kubernetes_operation_duration_seconds:
//     backend calls by operation, status and resource_class
//   - sanitizer_redactions_total: by rule label
//   - sanitizer_truncations_total, sanitizer_output_lines
//   - http_requests_total, http_request_duration_seconds
//
// Labels are bounded: unknown verbs become "other" and plurals are reduced to
// a resource class. METRICS_DETAILED_LABELS=true adds namespace and
// resource_type to backend metrics.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: enable metrics and tracing (default: false)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (default: 0.1)
//   - OTEL_SERVICE_NAME (default: mcp-k8s-agent)
//
// The stdout exporters write to stderr, since stdout carries stdio MCP traffic.
//
// # Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordPolicyDecision(ctx, "delete", false, "ApprovalRequired")
package instrumentation
