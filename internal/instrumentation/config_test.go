package instrumentation

import "testing"

func TestDefaultConfig(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "")
	t.Setenv("METRICS_EXPORTER", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("METRICS_DETAILED_LABELS", "")
	t.Setenv("TRACING_EXPORTER", "")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "")

	cfg := DefaultConfig()
	if cfg.Enabled {
		t.Error("expected instrumentation to be off by default")
	}
	if cfg.ServiceName != "mcp-k8s-agent" {
		t.Errorf("expected default service name mcp-k8s-agent, got %q", cfg.ServiceName)
	}
	if cfg.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected prometheus exporter, got %q", cfg.MetricsExporter)
	}
	if cfg.TracingExporter != ExporterNone {
		t.Errorf("expected no tracing exporter, got %q", cfg.TracingExporter)
	}
	if cfg.TraceSamplingRate != 0.1 {
		t.Errorf("expected sampling rate 0.1, got %v", cfg.TraceSamplingRate)
	}
	if cfg.DetailedLabels {
		t.Error("expected detailed labels off by default")
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "true")
	t.Setenv("METRICS_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "not-a-number")
	t.Setenv("METRICS_DETAILED_LABELS", "yes-please")

	cfg := DefaultConfig()
	if !cfg.Enabled {
		t.Error("expected instrumentation enabled")
	}
	if cfg.MetricsExporter != ExporterOTLP {
		t.Errorf("expected otlp exporter, got %q", cfg.MetricsExporter)
	}
	if cfg.TraceSamplingRate != 0.1 {
		t.Errorf("invalid sampling rate should fall back to default, got %v", cfg.TraceSamplingRate)
	}
	if cfg.DetailedLabels {
		t.Error("invalid bool should fall back to default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "disabled is always valid",
			cfg:  Config{Enabled: false, MetricsExporter: "bogus"},
		},
		{
			name: "prometheus",
			cfg:  Config{Enabled: true, MetricsExporter: ExporterPrometheus, TraceSamplingRate: 0.5},
		},
		{
			name:    "unknown metrics exporter",
			cfg:     Config{Enabled: true, MetricsExporter: "statsd"},
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			cfg:     Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "zipkin"},
			wantErr: true,
		},
		{
			name:    "otlp without endpoint",
			cfg:     Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP},
			wantErr: true,
		},
		{
			name: "otlp with endpoint",
			cfg: Config{Enabled: true, MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP,
				OTLPEndpoint: "http://collector:4318"},
		},
		{
			name:    "sampling rate above one",
			cfg:     Config{Enabled: true, MetricsExporter: ExporterPrometheus, TraceSamplingRate: 1.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
