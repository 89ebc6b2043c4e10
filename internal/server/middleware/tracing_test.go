package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	handler := Tracing(tp)(okHandler)

	t.Run("request gets a span and a trace ID header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Header().Get(TraceIDHeader), 32)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "POST /mcp", spans[0].Name())
		assert.Equal(t, rec.Header().Get(TraceIDHeader), spans[0].SpanContext().TraceID().String())
	})

	t.Run("health probes are not traced", func(t *testing.T) {
		before := len(recorder.Ended())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Empty(t, rec.Header().Get(TraceIDHeader))
		assert.Len(t, recorder.Ended(), before)
	})
}
