package policy

import (
	"sort"
	"strings"
)

// Verbs the gate and the tools share.
const (
	VerbList    = "list"
	VerbGet     = "get"
	VerbEvents  = "events"
	VerbPodLogs = "pod_logs"
	VerbDelete  = "delete"
	VerbPatch   = "patch"
)

// Well-known argument keys.
const (
	ArgPlural    = "plural"
	ArgAction    = "action"
	ArgReplicas  = "replicas"
	ArgContainer = "container"
	ArgImage     = "image"
	ArgReason    = "reason"
)

// RequestContext describes one tool call. It is built once per call by
// NewRequestContext and never modified afterwards.
type RequestContext struct {
	toolName  string
	verb      string
	kind      string
	namespace string
	name      string
	approved  bool
	arguments map[string]interface{}
}

// RequestOption sets an optional RequestContext field during construction.
type RequestOption func(*RequestContext)

// WithKind sets the resource kind. The raw spelling is kept for messages.
func WithKind(kind string) RequestOption {
	return func(rc *RequestContext) {
		rc.kind = strings.TrimSpace(kind)
	}
}

// WithNamespace sets the target namespace.
func WithNamespace(namespace string) RequestOption {
	return func(rc *RequestContext) {
		rc.namespace = strings.TrimSpace(namespace)
	}
}

// WithName sets the target object name.
func WithName(name string) RequestOption {
	return func(rc *RequestContext) {
		rc.name = strings.TrimSpace(name)
	}
}

// WithApproval records the caller's explicit consent to mutate.
func WithApproval(approved bool) RequestOption {
	return func(rc *RequestContext) {
		rc.approved = approved
	}
}

// WithArguments stores a deep copy of the raw tool arguments.
func WithArguments(args map[string]interface{}) RequestOption {
	return func(rc *RequestContext) {
		rc.arguments = copyArguments(args)
	}
}

// NewRequestContext builds an immutable RequestContext. The verb is trimmed
// and lowercased.
func NewRequestContext(toolName, verb string, opts ...RequestOption) RequestContext {
	rc := RequestContext{
		toolName: toolName,
		verb:     normalize(verb),
	}
	for _, opt := range opts {
		opt(&rc)
	}
	if rc.arguments == nil {
		rc.arguments = map[string]interface{}{}
	}
	return rc
}

// ToolName returns the calling tool's name.
func (rc RequestContext) ToolName() string { return rc.toolName }

// Verb returns the normalized verb.
func (rc RequestContext) Verb() string { return rc.verb }

// Kind returns the kind as supplied, trimmed.
func (rc RequestContext) Kind() string { return rc.kind }

// Namespace returns the target namespace.
func (rc RequestContext) Namespace() string { return rc.namespace }

// Name returns the target object name.
func (rc RequestContext) Name() string { return rc.name }

// Approved reports whether the caller approved a mutation.
func (rc RequestContext) Approved() bool { return rc.approved }

// Argument returns a copy of the value stored under key.
func (rc RequestContext) Argument(key string) (interface{}, bool) {
	v, ok := rc.arguments[key]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// ArgumentKeys returns the argument keys, sorted.
func (rc RequestContext) ArgumentKeys() []string {
	keys := make([]string, 0, len(rc.arguments))
	for k := range rc.arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Arguments returns a deep copy of the raw arguments.
func (rc RequestContext) Arguments() map[string]interface{} {
	return copyArguments(rc.arguments)
}

func copyArguments(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return nil
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyArguments(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
