package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlogAdapter(t *testing.T) {
	t.Run("nil logger uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		assert.NotNil(t, adapter.Logger())
	})

	t.Run("custom logger", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
		assert.Same(t, logger, NewSlogAdapter(logger).Logger())
	})
}

func TestSlogAdapterLevels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(NewHandler(FormatJSON, slog.LevelInfo, &buf)))

	adapter.Debug("hidden", "key", "value")
	assert.Empty(t, buf.String())

	tests := []struct {
		log   func(string, ...interface{})
		level string
	}{
		{adapter.Info, "INFO"},
		{adapter.Warn, "WARN"},
		{adapter.Error, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("backend call", KeyTool, "k8s_get")
			out := buf.String()
			assert.Contains(t, out, `"level":"`+tt.level+`"`)
			assert.Contains(t, out, `"tool":"k8s_get"`)
		})
	}
}

func TestSlogAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(NewHandler(FormatJSON, slog.LevelInfo, &buf)))

	adapter.With(KeyPolicyVersion, "v2").Info("gate ready")
	assert.Contains(t, buf.String(), `"policy_version":"v2"`)
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, DefaultLogger().Logger())
}
