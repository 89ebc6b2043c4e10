package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

func TestNewServerContext_RequiresBackend(t *testing.T) {
	_, err := NewServerContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingBackend)
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithBackend(&stubBackend{}))
	require.NoError(t, err)

	require.NotNil(t, sc.Gate(), "a default gate should be built")
	require.NotNil(t, sc.Sanitizer(), "a default sanitizer should be built")
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.InstrumentationProvider())
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())

	cfg := sc.Config()
	assert.Equal(t, "mcp-k8s-agent", cfg.ServerName)
	assert.Equal(t, policy.DefaultVersion, cfg.PolicyVersion)
	assert.Equal(t, output.DefaultMaxLines, sc.Sanitizer().Config().MaxLines)
}

func TestNewServerContext_Options(t *testing.T) {
	backend := &stubBackend{ready: true}
	gate := policy.NewGate(policy.DefaultTables())
	sanitizer := output.NewSanitizer(&output.Config{MaxLines: 50})
	logger := &recordingLogger{}

	sc, err := NewServerContext(context.Background(),
		WithBackend(backend),
		WithGate(gate),
		WithSanitizer(sanitizer),
		WithLogger(logger),
		WithServerName("agent-under-test"),
	)
	require.NoError(t, err)

	assert.Same(t, backend, sc.Backend())
	assert.Same(t, gate, sc.Gate())
	assert.Same(t, sanitizer, sc.Sanitizer())
	assert.Same(t, logger, sc.Logger())
	assert.Equal(t, "agent-under-test", sc.Config().ServerName)
}

func TestNewServerContext_MaxOutputLines(t *testing.T) {
	sc, err := NewServerContext(context.Background(),
		WithBackend(&stubBackend{}),
		WithMaxOutputLines(25),
	)
	require.NoError(t, err)
	assert.Equal(t, 25, sc.Sanitizer().Config().MaxLines)
}

func TestNewServerContext_NilOptionsRejected(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{name: "nil backend", opt: WithBackend(nil), wantErr: ErrMissingBackend},
		{name: "nil gate", opt: WithGate(nil), wantErr: ErrMissingGate},
		{name: "nil sanitizer", opt: WithSanitizer(nil), wantErr: ErrMissingSanitizer},
		{name: "nil logger", opt: WithLogger(nil), wantErr: ErrMissingLogger},
		{name: "nil config", opt: WithConfig(nil), wantErr: ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServerContext(context.Background(), WithBackend(&stubBackend{}), tt.opt)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServerContext_ConfigIsCopied(t *testing.T) {
	cfg := NewDefaultConfig()
	sc, err := NewServerContext(context.Background(), WithBackend(&stubBackend{}), WithConfig(cfg))
	require.NoError(t, err)

	cfg.ServerName = "mutated"
	assert.Equal(t, "mcp-k8s-agent", sc.Config().ServerName)

	sc.Config().ServerName = "mutated again"
	assert.Equal(t, "mcp-k8s-agent", sc.Config().ServerName)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), WithBackend(&stubBackend{}), WithLogger(&recordingLogger{}))
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err(), "context should be cancelled")

	require.NoError(t, sc.Shutdown(), "second shutdown is a no-op")
}

func TestDefaultGate_LogsDenials(t *testing.T) {
	logger := &recordingLogger{}
	sc, err := NewServerContext(context.Background(), WithBackend(&stubBackend{}), WithLogger(logger))
	require.NoError(t, err)

	err = sc.Gate().Enforce(policy.NewRequestContext("k8s_delete", policy.VerbDelete,
		policy.WithNamespace("prod"), policy.WithName("api")))
	require.Error(t, err)

	assert.Len(t, logger.warn, 1, "denial should be logged at warn level")
}
