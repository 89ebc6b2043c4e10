package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

// runStdioServer runs the server with STDIO transport. Nothing but protocol
// messages may be written to stdout.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, metrics *server.MetricsServer) error {
	return serveWithMetrics(ctx, metrics, func(ctx context.Context) error {
		return listenStdio(ctx, mcpSrv, os.Stdin, os.Stdout)
	}, nil)
}

// listenStdio serves one stdio session until in is closed or ctx is done.
func listenStdio(ctx context.Context, mcpSrv *mcpserver.MCPServer, in io.Reader, out io.Writer) error {
	stdioServer := mcpserver.NewStdioServer(mcpSrv)
	stdioServer.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	err := stdioServer.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		slog.Debug("stdio session ended")
		return nil
	}
	return fmt.Errorf("server stopped with error: %w", err)
}
