package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/resource/testdata"
)

func newTestMCPServer(t *testing.T, backend *testdata.MockBackend) (*mcpserver.MCPServer, *server.ServerContext) {
	t.Helper()
	sc, err := testdata.NewServerContext(backend)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv, err := newMCPServer(sc, "v0.0.0-test")
	require.NoError(t, err)
	return mcpSrv, sc
}

// rpc sends one JSON-RPC request and decodes the response generically.
func rpc(t *testing.T, mcpSrv *mcpserver.MCPServer, method string, params interface{}) map[string]interface{} {
	t.Helper()
	request, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	response := mcpSrv.HandleMessage(context.Background(), request)
	require.NotNil(t, response)

	raw, err := json.Marshal(response)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Nil(t, decoded["error"], "unexpected JSON-RPC error: %s", raw)
	return decoded["result"].(map[string]interface{})
}

func toolText(t *testing.T, result map[string]interface{}) string {
	t.Helper()
	content, ok := result["content"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, content)
	return content[0].(map[string]interface{})["text"].(string)
}

func TestNewMCPServer_ListsTools(t *testing.T) {
	mcpSrv, _ := newTestMCPServer(t, &testdata.MockBackend{})

	result := rpc(t, mcpSrv, "tools/list", map[string]interface{}{})

	var names []string
	for _, tool := range result["tools"].([]interface{}) {
		names = append(names, tool.(map[string]interface{})["name"].(string))
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"k8s_delete",
		"k8s_events",
		"k8s_get",
		"k8s_list",
		"k8s_patch",
		"k8s_pod_logs",
		"ping",
	}, names)
}

func TestNewMCPServer_DeniedCallNeverReachesBackend(t *testing.T) {
	backend := &testdata.MockBackend{}
	mcpSrv, _ := newTestMCPServer(t, backend)

	calls := []struct {
		tool string
		args map[string]interface{}
		want string
	}{
		{
			tool: "k8s_get",
			args: map[string]interface{}{"plural": "secrets", "version": "v1", "namespace": "default", "name": "db"},
			want: "DENIED: ForbiddenKind: ",
		},
		{
			tool: "k8s_delete",
			args: map[string]interface{}{"plural": "pods", "version": "v1", "namespace": "default", "name": "web"},
			want: "DENIED: ApprovalRequired: ",
		},
		{
			tool: "k8s_list",
			args: map[string]interface{}{"plural": "pods", "version": "v1", "namespace": "default", "labelSelector": "app=web"},
			want: "DENIED: BulkOperationBlocked: ",
		},
	}

	for _, call := range calls {
		t.Run(call.tool, func(t *testing.T) {
			result := rpc(t, mcpSrv, "tools/call", map[string]interface{}{
				"name":      call.tool,
				"arguments": call.args,
			})
			assert.Equal(t, true, result["isError"])
			assert.True(t, strings.HasPrefix(toolText(t, result), call.want), toolText(t, result))
		})
	}

	assert.Equal(t, 0, backend.TotalCalls())
}

func TestNewMCPServer_Ping(t *testing.T) {
	mcpSrv, _ := newTestMCPServer(t, &testdata.MockBackend{})

	result := rpc(t, mcpSrv, "tools/call", map[string]interface{}{"name": "ping", "arguments": map[string]interface{}{}})
	assert.NotEqual(t, true, result["isError"])
	assert.Contains(t, toolText(t, result), `"status"`)
}

func TestNewHTTPHandler(t *testing.T) {
	mcpSrv, sc := newTestMCPServer(t, &testdata.MockBackend{})

	t.Run("streamable-http serves health with hardening headers", func(t *testing.T) {
		config := validServeConfig()
		config.Transport = transportStreamableHTTP
		config.AllowedOrigins = "https://agent.example.com"

		handler, stop, err := newHTTPHandler(mcpSrv, sc, config)
		require.NoError(t, err)
		require.NotNil(t, stop)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://agent.example.com")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "https://agent.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		config := validServeConfig()
		config.Transport = transportStreamableHTTP

		handler, _, err := newHTTPHandler(mcpSrv, sc, config)
		require.NoError(t, err)

		body := strings.NewReader(strings.Repeat("x", 2<<20))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("sse mounts both endpoints", func(t *testing.T) {
		config := validServeConfig()
		config.Transport = transportSSE

		handler, _, err := newHTTPHandler(mcpSrv, sc, config)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/message", nil))
		assert.NotEqual(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid origins", func(t *testing.T) {
		config := validServeConfig()
		config.Transport = transportStreamableHTTP
		config.AllowedOrigins = "ftp://example.com"

		_, _, err := newHTTPHandler(mcpSrv, sc, config)
		assert.ErrorContains(t, err, "ALLOWED_ORIGINS")
	})

	t.Run("stdio is not an HTTP transport", func(t *testing.T) {
		_, _, err := newHTTPHandler(mcpSrv, sc, validServeConfig())
		assert.Error(t, err)
	})
}

func TestServeWithMetrics(t *testing.T) {
	t.Run("returns when run returns", func(t *testing.T) {
		stopped := false
		err := serveWithMetrics(context.Background(), nil,
			func(context.Context) error { return nil },
			func(context.Context) error { stopped = true; return nil },
		)
		require.NoError(t, err)
		assert.True(t, stopped)
	})

	t.Run("run error is returned", func(t *testing.T) {
		err := serveWithMetrics(context.Background(), nil,
			func(context.Context) error { return errors.New("listen failed") }, nil)
		assert.EqualError(t, err, "listen failed")
	})

	t.Run("cancellation stops run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- serveWithMetrics(ctx, nil, func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			}, nil)
		}()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serveWithMetrics did not return after cancellation")
		}
	})
}
