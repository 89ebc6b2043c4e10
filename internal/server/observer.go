package server

import (
	"context"

	"github.com/giantswarm/mcp-k8s-agent/internal/instrumentation"
	"github.com/giantswarm/mcp-k8s-agent/internal/logging"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// NewDecisionObserver returns a gate observer that counts every decision
// and logs denials at warn level. Either argument may be nil.
func NewDecisionObserver(logger Logger, provider *instrumentation.Provider) policy.Observer {
	var metrics *instrumentation.Metrics
	if provider != nil {
		metrics = provider.Metrics()
	}

	return policy.ObserverFunc(func(rc policy.RequestContext, d policy.Decision) {
		kind := ""
		if d.Denial != nil {
			kind = string(d.Denial.Kind)
		}
		metrics.RecordPolicyDecision(context.Background(), rc.Verb(), d.Allowed, kind)

		if logger == nil {
			return
		}
		if d.Allowed {
			logger.Debug("Policy decision",
				logging.Tool(rc.ToolName()),
				logging.Verb(rc.Verb()),
				logging.PolicyVersion(d.PolicyVersion),
			)
			return
		}
		logger.Warn("Policy denied tool call",
			logging.Tool(rc.ToolName()),
			logging.Verb(rc.Verb()),
			logging.Namespace(rc.Namespace()),
			logging.Denial(kind),
			logging.PolicyVersion(d.PolicyVersion),
		)
	})
}
