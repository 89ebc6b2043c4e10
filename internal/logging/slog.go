package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Attribute keys shared by every log line the agent writes.
const (
	KeyOperation     = "operation"
	KeyTool          = "tool"
	KeyVerb          = "verb"
	KeyNamespace     = "namespace"
	KeyResourceType  = "resource_type"
	KeyResourceName  = "resource_name"
	KeyDenial        = "denial"
	KeyPolicyVersion = "policy_version"
	KeyRedactions    = "redactions"
	KeyTruncated     = "truncated"
	KeyDuration      = "duration"
	KeyStatus        = "status"
	KeyError         = "error"
	KeyHost          = "host"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDenied  = "denied"
)

const redactedIP = "<redacted-ip>"

var (
	ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

	// Matches full, compressed and bracketed IPv6 forms.
	ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(Operation(operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(Tool(tool))
}

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Tool(name string) slog.Attr { return slog.String(KeyTool, name) }

func Verb(verb string) slog.Attr { return slog.String(KeyVerb, verb) }

func Namespace(ns string) slog.Attr { return slog.String(KeyNamespace, ns) }

func ResourceType(rt string) slog.Attr { return slog.String(KeyResourceType, rt) }

func ResourceName(name string) slog.Attr { return slog.String(KeyResourceName, name) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

func PolicyVersion(v string) slog.Attr { return slog.String(KeyPolicyVersion, v) }

func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Denial returns an attribute for the kind of a gate denial. An empty kind is
// logged as "none".
func Denial(kind string) slog.Attr {
	if kind == "" {
		kind = "none"
	}
	return slog.String(KeyDenial, kind)
}

// Redactions returns an attribute for the number of values the sanitizer
// replaced in one response.
func Redactions(n int) slog.Attr { return slog.Int(KeyRedactions, n) }

func Truncated(truncated bool) slog.Attr { return slog.Bool(KeyTruncated, truncated) }

// Err returns an attribute for err. A nil error is logged as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr is Err with IP addresses redacted. Use it for errors that may
// quote the API server address.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host returns an attribute for host with IP addresses redacted.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost redacts IPv4 and IPv6 addresses in host, which may be a bare
// address, a host:port pair, a URL or free text. Hostnames are kept.
//
//	"https://192.168.1.100:6443" -> "https://<redacted-ip>:6443"
//	"https://[2001:db8::1]:6443" -> "https://<redacted-ip>:6443"
//	"api.example.com:6443"       -> "api.example.com:6443"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}
	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}
	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		return parsed.String()
	}
	return host
}

func redactIPs(s string) string {
	s = ipv4Regex.ReplaceAllString(s, redactedIP)
	return ipv6Regex.ReplaceAllString(s, redactedIP)
}

// SanitizeToken reports only the length of token. No part of the value is
// ever logged.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
