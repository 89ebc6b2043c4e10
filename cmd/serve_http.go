package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/server/middleware"
)

// shutdownFunc stops a transport within the deadline of ctx.
type shutdownFunc func(ctx context.Context) error

// newHTTPHandler builds the handler for the sse and streamable-http
// transports: the MCP endpoints plus health probes, wrapped in the tracing,
// metrics and hardening middleware. The returned shutdownFunc closes open MCP sessions.
func newHTTPHandler(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config ServeConfig) (http.Handler, shutdownFunc, error) {
	origins, err := middleware.ParseAllowedOrigins(config.AllowedOrigins)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ALLOWED_ORIGINS: %w", err)
	}

	mux := http.NewServeMux()
	var stop shutdownFunc

	switch config.Transport {
	case transportSSE:
		sseServer := mcpserver.NewSSEServer(mcpSrv,
			mcpserver.WithSSEEndpoint(config.SSEEndpoint),
			mcpserver.WithMessageEndpoint(config.MessageEndpoint),
		)
		mux.Handle(config.SSEEndpoint, sseServer.SSEHandler())
		mux.Handle(config.MessageEndpoint, sseServer.MessageHandler())
		stop = sseServer.Shutdown
	case transportStreamableHTTP:
		httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(config.HTTPEndpoint),
		)
		mux.Handle(config.HTTPEndpoint, httpServer)
		stop = httpServer.Shutdown
	default:
		return nil, nil, fmt.Errorf("transport %s is not served over HTTP", config.Transport)
	}

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	handler := middleware.Chain(mux,
		middleware.Tracing(nil),
		middleware.HTTPMetrics(sc.InstrumentationProvider()),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{EnableHSTS: config.EnableHSTS}),
		middleware.CORS(origins),
		middleware.MaxRequestBytes(middleware.DefaultMaxRequestBytes),
	)
	return handler, stop, nil
}

// runHTTPServer serves the sse or streamable-http transport until ctx is done.
func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, config ServeConfig, metrics *server.MetricsServer) error {
	handler, stopMCP, err := newHTTPHandler(mcpSrv, sc, config)
	if err != nil {
		return err
	}

	// Create HTTP server with security timeouts. Writes are unbounded for
	// SSE streams, so only streamable-http gets a write timeout.
	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if config.Transport == transportStreamableHTTP {
		httpServer.WriteTimeout = 120 * time.Second
	}

	attrs := []any{"transport", config.Transport, "addr", config.HTTPAddr, "health_endpoints", []string{"/healthz", "/readyz"}}
	if config.Transport == transportSSE {
		attrs = append(attrs, "sse_endpoint", config.SSEEndpoint, "message_endpoint", config.MessageEndpoint)
	} else {
		attrs = append(attrs, "endpoint", config.HTTPEndpoint)
	}
	slog.Info("HTTP server starting", attrs...)

	run := func(context.Context) error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	}
	stop := func(ctx context.Context) error {
		if err := stopMCP(ctx); err != nil {
			slog.Warn("error closing MCP sessions", logging.Err(err))
		}
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	}

	if err := serveWithMetrics(ctx, metrics, run, stop); err != nil {
		return err
	}
	slog.Info("HTTP server gracefully stopped")
	return nil
}

// metricsServerFor returns the dedicated metrics server, or nil when it is
// disabled or instrumentation is off.
func metricsServerFor(config MetricsServeConfig, provider *instrumentation.Provider) *server.MetricsServer {
	if !config.Enabled || !provider.Enabled() {
		return nil
	}
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 config.Enabled,
		InstrumentationProvider: provider,
	})
	if err != nil {
		slog.Error("failed to create metrics server", logging.Err(err))
		return nil
	}
	return metricsServer
}

// serveWithMetrics runs a transport next to the optional metrics server.
// When ctx is done, run returns or either server fails, everything is shut
// down within server.DefaultShutdownTimeout. stop may be nil.
func serveWithMetrics(ctx context.Context, metrics *server.MetricsServer, run func(context.Context) error, stop shutdownFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return run(gctx)
	})

	if metrics != nil {
		g.Go(func() error {
			slog.Info("metrics server started", "addr", metrics.Addr(), "endpoint", "/metrics")
			if err := metrics.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer shutdownCancel()

		// Shutdown metrics server first
		if metrics != nil {
			if err := metrics.Shutdown(shutdownCtx); err != nil {
				slog.Error("error shutting down metrics server", logging.Err(err))
			}
		}
		if stop != nil {
			return stop(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}
