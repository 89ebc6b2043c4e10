package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// ServeConfig holds the configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport       string
	HTTPAddr        string
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Cluster settings
	Kubeconfig string
	Context    string
	InCluster  bool
	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	// Policy and output settings
	PolicyFile     string
	MaxOutputLines int

	// Logging
	DebugMode bool
	LogFormat string

	// HTTP hardening, read from the environment only
	AllowedOrigins string
	EnableHSTS     bool

	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated metrics server.
type MetricsServeConfig struct {
	// Enabled starts the metrics server. It only has an effect when
	// instrumentation is enabled too.
	Enabled bool
	Addr    string
}

// Validate checks the configuration before anything is started.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.InCluster && c.Kubeconfig != "" {
		return errors.New("--in-cluster and --kubeconfig are mutually exclusive")
	}
	if c.InCluster && c.Context != "" {
		return errors.New("--context cannot be used with --in-cluster")
	}
	if c.QPSLimit <= 0 {
		return fmt.Errorf("--qps must be positive, got %v", c.QPSLimit)
	}
	if c.BurstLimit <= 0 {
		return fmt.Errorf("--burst must be positive, got %d", c.BurstLimit)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxOutputLines <= 0 {
		return fmt.Errorf("--max-output-lines must be positive, got %d", c.MaxOutputLines)
	}
	if c.MaxOutputLines > output.DefaultMaxLines {
		return fmt.Errorf("--max-output-lines cannot exceed %d, got %d", output.DefaultMaxLines, c.MaxOutputLines)
	}
	if c.Transport == transportSSE && c.SSEEndpoint == c.MessageEndpoint {
		return errors.New("--sse-endpoint and --message-endpoint must differ")
	}
	if c.Metrics.Enabled && c.Metrics.Addr != "" && c.Metrics.Addr == c.HTTPAddr && c.Transport != transportStdio {
		return errors.New("--metrics-addr must differ from --http-addr")
	}
	return nil
}

// loadServeEnv fills settings from the environment for every flag the user
// did not set explicitly.
func loadServeEnv(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("kubeconfig") {
		loadEnvIfEmpty(&config.Kubeconfig, "KUBECONFIG")
	}
	if !cmd.Flags().Changed("policy-file") {
		loadEnvIfEmpty(&config.PolicyFile, "MCP_POLICY_FILE")
	}
	if !cmd.Flags().Changed("in-cluster") && os.Getenv("IN_CLUSTER") == envValueTrue {
		config.InCluster = true
	}
	if !cmd.Flags().Changed("log-format") {
		if v := os.Getenv("LOG_FORMAT"); v != "" {
			config.LogFormat = v
		}
	}
	if !cmd.Flags().Changed("max-output-lines") {
		if n, ok := parseIntEnv(os.Getenv("MAX_OUTPUT_LINES"), "MAX_OUTPUT_LINES"); ok {
			config.MaxOutputLines = n
		}
	}
	if !cmd.Flags().Changed("timeout") {
		if d, ok := parseDurationEnv(os.Getenv("K8S_TIMEOUT"), "K8S_TIMEOUT"); ok {
			config.Timeout = d
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		loadEnvIfEmpty(&config.Metrics.Addr, "METRICS_ADDR")
	}

	config.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	config.EnableHSTS = os.Getenv("ENABLE_HSTS") == envValueTrue
}

// loadEnvIfEmpty sets *target from the environment when it is empty.
func loadEnvIfEmpty(target *string, envName string) {
	if *target != "" {
		return
	}
	if v := os.Getenv(envName); v != "" {
		*target = v
	}
}

// parseDurationEnv parses a duration from an environment variable value.
// A present but invalid value is logged and ignored.
func parseDurationEnv(value, envName string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment", "env", envName, "value", value, "error", err)
		return 0, false
	}
	return d, true
}

// parseIntEnv parses an integer from an environment variable value.
// A present but invalid value is logged and ignored.
func parseIntEnv(value, envName string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", "env", envName, "value", value, "error", err)
		return 0, false
	}
	return n, true
}
