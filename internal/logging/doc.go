// Package logging holds the structured logging conventions of the agent.
//
// All logging goes through log/slog. The helpers here fix the attribute keys
// so gate decisions, backend calls and sanitizer reports can be correlated:
//
//	logger := logging.WithTool(slog.Default(), "k8s_delete")
//	logger.Info("request denied",
//	    logging.Verb("delete"),
//	    logging.Namespace("default"),
//	    logging.Denial("ApprovalRequired"),
//	    logging.Status(logging.StatusDenied))
//
// Logs always go to stderr because stdout carries stdio MCP traffic.
// Errors that may quote the API server address should be logged with
// SanitizedErr, which redacts IP addresses.
package logging
