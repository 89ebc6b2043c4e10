package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/cluster"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/event"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/pod"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/resource"
)

const serverName = "mcp-k8s-agent"

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	config := ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Kubernetes agent",
		Long: `Start the MCP server that exposes policy-gated Kubernetes tools
via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Authentication:
  - Kubeconfig (default): KUBECONFIG or ~/.kube/config, optionally with --context
  - In-cluster: the pod's service account when run with --in-cluster

Policy:
  The built-in policy forbids Secrets and ConfigMaps, requires explicit
  approval for delete and patch, blocks bulk selectors and only allows
  scale, update_image and rollout_restart patches. --policy-file can only
  make it stricter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnv(cmd, &config)
			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Cluster flags
	cmd.Flags().StringVar(&config.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (can also be set via KUBECONFIG env var)")
	cmd.Flags().StringVar(&config.Context, "context", "", "Kubeconfig context to use (default: current context)")
	cmd.Flags().BoolVar(&config.InCluster, "in-cluster", false, "Use in-cluster authentication (service account token) instead of kubeconfig")
	cmd.Flags().Float32Var(&config.QPSLimit, "qps", 20.0, "QPS limit for Kubernetes API calls")
	cmd.Flags().IntVar(&config.BurstLimit, "burst", 30, "Burst limit for Kubernetes API calls")
	cmd.Flags().DurationVar(&config.Timeout, "timeout", 30*time.Second, "Timeout for a single Kubernetes API call (can also be set via K8S_TIMEOUT env var)")

	// Policy and output flags
	cmd.Flags().StringVar(&config.PolicyFile, "policy-file", "", "YAML file that tightens the built-in policy (can also be set via MCP_POLICY_FILE env var)")
	cmd.Flags().IntVar(&config.MaxOutputLines, "max-output-lines", output.DefaultMaxLines, "Maximum number of lines in a tool result before truncation")

	// Logging flags
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", string(logging.FormatText), "Log format: text or json (can also be set via LOG_FORMAT env var)")

	// Metrics flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics", true, "Serve Prometheus metrics on a dedicated port when instrumentation is enabled")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_ADDR env var)")

	return cmd
}

// runServe contains the main server logic with support for multiple transports.
func runServe(config ServeConfig) error {
	// Logs always go to stderr so stdio transport output stays clean.
	format, err := logging.ParseFormat(config.LogFormat)
	if err != nil {
		return err
	}
	logger := slog.New(logging.NewHandler(format, logging.Level(config.DebugMode), os.Stderr))
	slog.SetDefault(logger)
	adapter := logging.NewSlogAdapter(logger)

	tables, err := policy.LoadTables(config.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	backend, err := k8s.NewBackend(&k8s.ClientConfig{
		KubeconfigPath: config.Kubeconfig,
		Context:        config.Context,
		InCluster:      config.InCluster,
		QPSLimit:       config.QPSLimit,
		BurstLimit:     config.BurstLimit,
		Timeout:        config.Timeout,
		DebugMode:      config.DebugMode,
		Logger:         adapter,
	}, k8s.WithPolicyTables(tables))
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes backend: %w", err)
	}
	if err := backend.Validate(); err != nil {
		return fmt.Errorf("invalid Kubernetes configuration: %w", err)
	}

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	provider.SetAuditLogger(logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()
	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics_exporter", instrumentationConfig.MetricsExporter,
			"tracing_exporter", instrumentationConfig.TracingExporter)
	}

	gate := policy.NewGate(tables, policy.WithObserver(server.NewDecisionObserver(adapter, provider)))

	serverConfig := server.NewDefaultConfig()
	serverConfig.ServerName = serverName
	serverConfig.Version = rootCmd.Version
	serverConfig.MaxOutputLines = config.MaxOutputLines
	serverConfig.InCluster = config.InCluster

	sc, err := server.NewServerContext(shutdownCtx,
		server.WithBackend(backend),
		server.WithGate(gate),
		server.WithLogger(adapter),
		server.WithConfig(serverConfig),
		server.WithInstrumentationProvider(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	logger.Info("policy loaded",
		logging.PolicyVersion(tables.Version()),
		"policy_file", config.PolicyFile,
		"context", backend.CurrentContext())

	// Create the clients in the background so the first tool call is fast
	// and a broken cluster shows up in the logs early.
	go func() {
		if err := backend.Warmup(shutdownCtx); err != nil {
			logger.Warn("Kubernetes client warmup failed", logging.SanitizedErr(err))
		}
	}()

	mcpSrv, err := newMCPServer(sc, rootCmd.Version)
	if err != nil {
		return err
	}

	metrics := metricsServerFor(config.Metrics, provider)

	switch config.Transport {
	case transportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, metrics)
	case transportSSE, transportStreamableHTTP:
		return runHTTPServer(shutdownCtx, mcpSrv, sc, config, metrics)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}
}

// newMCPServer creates the MCP server and registers every tool category.
func newMCPServer(sc *server.ServerContext, version string) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	registrations := []struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}{
		{"cluster", cluster.RegisterClusterTools},
		{"resource", resource.RegisterResourceTools},
		{"pod", pod.RegisterPodTools},
		{"event", event.RegisterEventTools},
	}
	for _, r := range registrations {
		if err := r.register(mcpSrv, sc); err != nil {
			return nil, fmt.Errorf("failed to register %s tools: %w", r.name, err)
		}
	}
	return mcpSrv, nil
}
