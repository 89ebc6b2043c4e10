package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

func TestDecisionObserver_RecordsMetricsAndLogs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider, err := instrumentation.NewProviderWithReader(instrumentation.Config{ServiceName: "test"}, reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	logger := &recordingLogger{}
	gate := policy.NewGate(policy.DefaultTables(), policy.WithObserver(NewDecisionObserver(logger, provider)))

	_ = gate.Enforce(policy.NewRequestContext("k8s_get", policy.VerbGet,
		policy.WithNamespace("default"), policy.WithName("web")))
	_ = gate.Enforce(policy.NewRequestContext("k8s_get", policy.VerbGet,
		policy.WithKind("Secret"), policy.WithNamespace("default"), policy.WithName("db")))

	assert.Len(t, logger.debug, 1, "allowed decision logged at debug")
	assert.Len(t, logger.warn, 1, "denied decision logged at warn")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "policy_decisions_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, p := range sum.DataPoints {
				total += p.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}

func TestDecisionObserver_NilDependencies(t *testing.T) {
	gate := policy.NewGate(policy.DefaultTables(), policy.WithObserver(NewDecisionObserver(nil, nil)))

	assert.NotPanics(t, func() {
		_ = gate.Enforce(policy.NewRequestContext("k8s_delete", policy.VerbDelete))
	})
}
