package server

import (
	"context"
	"sync"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

// ServerContext holds everything a tool handler needs: the backend, the
// policy gate, the output sanitizer, logging and instrumentation. It is built
// by the caller with functional options and passed to every tool.
type ServerContext struct {
	backend   k8s.Backend
	gate      *policy.Gate
	sanitizer *output.Sanitizer
	logger    Logger
	config    *Config

	instrumentationProvider *instrumentation.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext. A backend is required. When no
// gate is given, the built-in policy is used with a decision observer wired
// to the context's logger and metrics. When no sanitizer is given, one is
// built from Config.MaxOutputLines.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: NewDefaultLogger(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	if sc.gate == nil {
		sc.gate = policy.NewGate(policy.DefaultTables(),
			policy.WithObserver(NewDecisionObserver(sc.logger, sc.instrumentationProvider)))
	}
	if sc.sanitizer == nil {
		sc.sanitizer = output.NewSanitizer(&output.Config{MaxLines: sc.config.MaxOutputLines})
	}
	sc.config.PolicyVersion = sc.gate.Tables().Version()

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Backend returns the cluster backend.
func (sc *ServerContext) Backend() k8s.Backend {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.backend
}

// Gate returns the policy gate every tool call must pass.
func (sc *ServerContext) Gate() *policy.Gate {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.gate
}

// Sanitizer returns the output sanitizer applied to every tool result.
func (sc *ServerContext) Sanitizer() *output.Sanitizer {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.sanitizer
}

func (sc *ServerContext) Logger() Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns a copy of the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// InstrumentationProvider returns the provider, or nil when none was set.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Metrics returns the metric recorder. It is nil without a provider; the
// recorder's methods accept a nil receiver.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	provider := sc.InstrumentationProvider()
	if provider == nil {
		return nil
	}
	return provider.Metrics()
}

// AuditLogger returns the audit logger, or nil without a provider.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	provider := sc.InstrumentationProvider()
	if provider == nil {
		return nil
	}
	return provider.AuditLogger()
}

// Shutdown cancels the server context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")
	if sc.cancel != nil {
		sc.cancel()
	}
	sc.shutdown = true
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

func (sc *ServerContext) validate() error {
	if sc.backend == nil {
		return ErrMissingBackend
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Logger is the logging interface used by the server and the tools.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NewDefaultLogger returns a slog-backed logger writing text to stderr.
func NewDefaultLogger() Logger {
	return logging.DefaultLogger()
}

// Config holds the server configuration.
type Config struct {
	ServerName string `json:"serverName" yaml:"serverName"`
	Version    string `json:"version" yaml:"version"`

	// MaxOutputLines is the sanitizer's line budget for tool results.
	MaxOutputLines int `json:"maxOutputLines" yaml:"maxOutputLines"`

	// PolicyVersion is filled in from the gate's tables.
	PolicyVersion string `json:"policyVersion" yaml:"policyVersion"`

	// InCluster is informational and reported by the health endpoint.
	InCluster bool `json:"inCluster" yaml:"inCluster"`
}

// NewDefaultConfig returns the default configuration.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:     "mcp-k8s-agent",
		Version:        "dev",
		MaxOutputLines: output.DefaultMaxLines,
		PolicyVersion:  policy.DefaultVersion,
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
