package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name     string
		write    func(rw *statusRecorder)
		wantCode int
	}{
		{
			name:     "explicit status",
			write:    func(rw *statusRecorder) { rw.WriteHeader(http.StatusNotFound) },
			wantCode: http.StatusNotFound,
		},
		{
			name:     "body only defaults to 200",
			write:    func(rw *statusRecorder) { _, _ = rw.Write([]byte("hello")) },
			wantCode: http.StatusOK,
		},
		{
			name: "only first status counts",
			write: func(rw *statusRecorder) {
				rw.WriteHeader(http.StatusAccepted)
				rw.WriteHeader(http.StatusBadRequest)
			},
			wantCode: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := newStatusRecorder(httptest.NewRecorder())
			tt.write(rw)
			assert.Equal(t, tt.wantCode, rw.statusCode)
			assert.True(t, rw.written)
		})
	}
}

func TestStatusRecorder_FlushAndUnwrap(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := newStatusRecorder(recorder)

	rw.Flush()
	assert.True(t, recorder.Flushed)
	assert.Equal(t, recorder, rw.Unwrap())
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/mcp", "/mcp"},
		{"/healthz", "/healthz"},
		{"/sse", "/sse"},
		{"/message", "/message"},
		{"/mcp/abc123xyz890def456", "/mcp/:session"},
		{"/mcp/session-id-12345", "/mcp/:session"},
		{"/api/resources/550e8400-e29b-41d4-a716-446655440000", "/api/resources/:uuid"},
		{"/api/items/12345/details", "/api/items/:id/details"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePath(tt.input))
		})
	}
}

func TestHTTPMetrics_NilProvider(t *testing.T) {
	handler := HTTPMetrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestHTTPMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider, err := instrumentation.NewProviderWithReader(instrumentation.Config{ServiceName: "test"}, reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	handler := HTTPMetrics(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/abc123xyz890def456", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			path, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("path"))
			status, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("status"))
			assert.Equal(t, "/mcp/:session", path.AsString())
			assert.Equal(t, "404", status.AsString())
			found = true
		}
	}
	assert.True(t, found, "http_requests_total should be recorded")
}
