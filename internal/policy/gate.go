package policy

import (
	"fmt"
)

// Decision is the outcome of evaluating one RequestContext.
type Decision struct {
	// Allowed is true when every check passed.
	Allowed bool

	// Denial is set when Allowed is false.
	Denial *Denial

	// Intent carries the validated patch intent for verb=patch.
	Intent PatchIntent

	// PolicyVersion is the version of the tables that produced the decision.
	PolicyVersion string
}

// Err returns the denial as an error, or nil when the request was allowed.
func (d Decision) Err() error {
	if d.Denial != nil {
		return d.Denial
	}
	return nil
}

// Observer is notified of every final decision. Observers cannot change the
// outcome and must not block.
type Observer interface {
	ObserveDecision(rc RequestContext, d Decision)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(rc RequestContext, d Decision)

// ObserveDecision calls f.
func (f ObserverFunc) ObserveDecision(rc RequestContext, d Decision) { f(rc, d) }

// Gate runs the ordered policy checks. A Gate holds only immutable state and
// is safe for concurrent use.
type Gate struct {
	tables    *Tables
	observers []Observer
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithObserver registers an observer for every decision.
func WithObserver(o Observer) GateOption {
	return func(g *Gate) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// NewGate creates a gate over tables. A nil tables value uses DefaultTables.
func NewGate(tables *Tables, opts ...GateOption) *Gate {
	if tables == nil {
		tables = DefaultTables()
	}
	g := &Gate{tables: tables}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tables returns the tables the gate enforces.
func (g *Gate) Tables() *Tables {
	return g.tables
}

// Enforce returns nil if rc may proceed to the backend, or a *Denial.
func (g *Gate) Enforce(rc RequestContext) error {
	return g.Evaluate(rc).Err()
}

// Evaluate runs every check and returns the full decision.
func (g *Gate) Evaluate(rc RequestContext) Decision {
	d := g.decide(rc)
	for _, o := range g.observers {
		o.ObserveDecision(rc, d)
	}
	return d
}

func (g *Gate) decide(rc RequestContext) (d Decision) {
	d.PolicyVersion = g.tables.Version()

	// A panic in any check must never turn into an implicit allow.
	defer func() {
		if r := recover(); r != nil {
			d = Decision{
				Denial:        deny(GateError, "policy evaluation failed: %v", r),
				PolicyVersion: g.tables.Version(),
			}
		}
	}()

	checks := []func(RequestContext) *Denial{
		g.checkAction,
		g.checkKind,
		g.checkPlural,
		g.checkScope,
		g.checkApproval,
		g.checkBulk,
	}
	for _, check := range checks {
		if denial := check(rc); denial != nil {
			d.Denial = denial
			return d
		}
	}

	if rc.Verb() == VerbPatch {
		intent, err := ParsePatchIntent(g.tables, rc.Arguments())
		if err != nil {
			denial, ok := AsDenial(err)
			if !ok {
				denial = deny(InvalidPatchIntent, "%v", err)
			}
			d.Denial = denial
			return d
		}
		d.Intent = intent
	}

	d.Allowed = true
	return d
}

func (g *Gate) checkAction(rc RequestContext) *Denial {
	if rc.Verb() == "" {
		return deny(GateError, "a verb is required")
	}
	if !g.tables.IsKnownVerb(rc.Verb()) {
		return deny(ActionNotAllowed, "verb %q is not an allowed action", rc.Verb())
	}
	return nil
}

func (g *Gate) checkKind(rc RequestContext) *Denial {
	if rc.Kind() != "" && g.tables.IsForbiddenKind(rc.Kind()) {
		return deny(ForbiddenKind, "access to kind %q is forbidden", rc.Kind())
	}
	return nil
}

func (g *Gate) checkPlural(rc RequestContext) *Denial {
	raw, ok := rc.Argument(ArgPlural)
	if !ok || raw == nil {
		return nil
	}
	plural, ok := raw.(string)
	if !ok {
		return deny(GateError, "argument %q must be a string", ArgPlural)
	}
	if g.tables.IsForbiddenPlural(plural) {
		return deny(ForbiddenKind, "access to resource %q is forbidden", plural)
	}
	return nil
}

func (g *Gate) checkScope(rc RequestContext) *Denial {
	clusterScoped := g.tables.IsClusterScopedKind(rc.Kind())

	switch rc.Verb() {
	case VerbList:
		if rc.Namespace() == "" && !clusterScoped {
			return deny(MissingScope, "list requires a namespace (cluster-wide listing is not permitted)")
		}
	case VerbEvents:
		if rc.Namespace() == "" {
			return deny(MissingScope, "events requires a namespace (cluster-wide listing is not permitted)")
		}
	case VerbGet:
		if clusterScoped {
			if rc.Name() == "" {
				return deny(MissingScope, "get of %s requires a name", rc.Kind())
			}
			return nil
		}
		return requireNamespaceAndName(rc)
	case VerbDelete, VerbPodLogs, VerbPatch:
		return requireNamespaceAndName(rc)
	default:
		if rc.Kind() != "" {
			return requireNamespaceAndName(rc)
		}
	}
	return nil
}

func requireNamespaceAndName(rc RequestContext) *Denial {
	switch {
	case rc.Namespace() == "" && rc.Name() == "":
		return deny(MissingScope, "%s requires both a namespace and a name", rc.Verb())
	case rc.Namespace() == "":
		return deny(MissingScope, "%s requires a namespace", rc.Verb())
	case rc.Name() == "":
		return deny(MissingScope, "%s requires a name", rc.Verb())
	}
	return nil
}

func (g *Gate) checkApproval(rc RequestContext) *Denial {
	if g.tables.IsWriteVerb(rc.Verb()) && !rc.Approved() {
		return deny(ApprovalRequired, "%s is a write action and was not approved; resubmit with approved=true to proceed", titleVerb(rc.Verb()))
	}
	return nil
}

func (g *Gate) checkBulk(rc RequestContext) *Denial {
	for _, key := range rc.ArgumentKeys() {
		if g.tables.IsBulkKey(key) {
			return deny(BulkOperationBlocked, "argument %q can select more than one object; bulk operations are blocked", key)
		}
	}
	return nil
}

// String renders the decision for logs.
func (d Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("allowed (policy %s)", d.PolicyVersion)
	}
	return fmt.Sprintf("%s (policy %s)", d.Denial.Error(), d.PolicyVersion)
}
