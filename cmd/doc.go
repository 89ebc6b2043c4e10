// Package cmd provides the command-line interface for mcp-k8s-agent.
//
// Subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application and built-in policy version
//   - self-update: Updates the binary to the latest version from GitHub releases
//   - policy show: Prints the effective policy tables as YAML
//   - policy check: Evaluates one request against the policy offline
//
// Command Structure:
//
//	mcp-k8s-agent [flags]                  # Starts the MCP server (default)
//	mcp-k8s-agent serve [flags]            # Explicitly starts the MCP server
//	mcp-k8s-agent version                  # Shows version information
//	mcp-k8s-agent self-update              # Updates to latest release
//	mcp-k8s-agent policy show              # Prints the policy
//	mcp-k8s-agent policy check --verb get --kind Pod --namespace default --name web
//
// Transport Configuration Examples:
//
//	mcp-k8s-agent serve --transport stdio
//	mcp-k8s-agent serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-k8s-agent serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// Logs are always written to stderr, in text or JSON (--log-format), so the
// stdio transport keeps stdout for protocol messages only.
package cmd
