package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"logfmt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(FormatJSON, slog.LevelDebug, &buf))

	logger.Debug("request denied", Tool("k8s_delete"), Denial("ApprovalRequired"), Redactions(2))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "request denied", record["msg"])
	assert.Equal(t, "k8s_delete", record[KeyTool])
	assert.Equal(t, "ApprovalRequired", record[KeyDenial])
	assert.Equal(t, float64(2), record[KeyRedactions])
}

func TestNewHandlerText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(FormatText, Level(false), &buf))

	logger.Debug("dropped")
	logger.Info("kept", Verb("list"))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "verb=list")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level(true))
	assert.Equal(t, slog.LevelInfo, Level(false))
}
