// Package server provides the ServerContext and the HTTP plumbing around the
// MCP transport.
//
// ServerContext carries the dependencies every tool handler uses:
//
//   - the cluster backend (k8s.Backend)
//   - the policy gate, consulted before any backend call
//   - the output sanitizer, applied to every tool result
//   - a Logger and an optional instrumentation provider
//
// Dependencies are injected with functional options:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithBackend(backend),
//		server.WithGate(gate),
//		server.WithLogger(logger),
//	)
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed. MetricsServer
// serves the Prometheus registry on its own address.
package server
