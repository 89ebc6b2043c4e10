package server

import (
	"errors"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/tools/output"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithBackend sets the cluster backend.
func WithBackend(backend k8s.Backend) Option {
	return func(sc *ServerContext) error {
		if backend == nil {
			return ErrMissingBackend
		}
		sc.backend = backend
		return nil
	}
}

// WithGate sets the policy gate. Callers that build their own gate should
// register NewDecisionObserver on it to keep decisions logged and counted.
func WithGate(gate *policy.Gate) Option {
	return func(sc *ServerContext) error {
		if gate == nil {
			return ErrMissingGate
		}
		sc.gate = gate
		return nil
	}
}

// WithSanitizer sets the output sanitizer.
func WithSanitizer(sanitizer *output.Sanitizer) Option {
	return func(sc *ServerContext) error {
		if sanitizer == nil {
			return ErrMissingSanitizer
		}
		sc.sanitizer = sanitizer
		return nil
	}
}

// WithLogger sets the logger for the ServerContext.
func WithLogger(logger Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration for the ServerContext.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		sc.config.ServerName = name
		return nil
	}
}

// WithMaxOutputLines sets the line budget of the default sanitizer.
func WithMaxOutputLines(lines int) Option {
	return func(sc *ServerContext) error {
		sc.config.MaxOutputLines = lines
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation and operations.
var (
	ErrMissingBackend   = errors.New("cluster backend is required")
	ErrMissingGate      = errors.New("policy gate is required")
	ErrMissingSanitizer = errors.New("output sanitizer is required")
	ErrMissingLogger    = errors.New("logger is required")
	ErrMissingConfig    = errors.New("configuration is required")
	ErrServerShutdown   = errors.New("server context has been shutdown")
)
