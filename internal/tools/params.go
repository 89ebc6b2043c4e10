package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Parameter names shared by several tools.
const (
	ParamNamespace = "namespace"
	ParamGroup     = "group"
	ParamVersion   = "version"
	ParamPlural    = "plural"
	ParamKind      = "kind"
	ParamName      = "name"
	ParamApproved  = "approved"
	ParamLimit     = "limit"
)

// NamespaceParam declares the namespace argument.
func NamespaceParam(required bool, description string) mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description(description)}
	if required {
		opts = append(opts, mcp.Required())
	}
	return mcp.WithString(ParamNamespace, opts...)
}

// ResourceTypeParams declares group, version, plural and kind. The version
// may be optional for tools that can fall back to the built-in resource map.
func ResourceTypeParams(versionRequired bool) []mcp.ToolOption {
	versionOpts := []mcp.PropertyOption{
		mcp.Description("API version, e.g. v1 or v1beta1"),
	}
	if versionRequired {
		versionOpts = append(versionOpts, mcp.Required())
	}

	return []mcp.ToolOption{
		mcp.WithString(ParamGroup,
			mcp.Description("API group, empty for the core group (e.g. apps, batch)"),
		),
		mcp.WithString(ParamVersion, versionOpts...),
		mcp.WithString(ParamPlural,
			mcp.Required(),
			mcp.Description("Plural resource name, e.g. pods, deployments"),
		),
		mcp.WithString(ParamKind,
			mcp.Description("Resource kind, e.g. Pod, Deployment"),
		),
	}
}

// ApprovedParam declares the explicit approval flag required by write tools.
func ApprovedParam() mcp.ToolOption {
	return mcp.WithBoolean(ParamApproved,
		mcp.Required(),
		mcp.Description("Must be true. Confirms that a human approved this change"),
	)
}

// StringArg returns args[key] trimmed, or "" when missing or not a string.
func StringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// BoolArg reports whether args[key] is the boolean true. Strings such as
// "true" do not count.
func BoolArg(args map[string]interface{}, key string) bool {
	b, ok := args[key].(bool)
	return ok && b
}

// IntArg returns args[key] as an integer. ok is false when the key is absent.
// A present value that is not a whole number is an error.
func IntArg(args map[string]interface{}, key string) (n int64, ok bool, err error) {
	v, present := args[key]
	if !present || v == nil {
		return 0, false, nil
	}

	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || math.IsNaN(val) {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return int64(val), true, nil
	case int:
		return int64(val), true, nil
	case int64:
		return val, true, nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return n, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

// BoundedIntArg reads an optional integer and checks it lies in [lo, hi].
func BoundedIntArg(args map[string]interface{}, key string, lo, hi int64) (int64, bool, error) {
	n, ok, err := IntArg(args, key)
	if err != nil || !ok {
		return n, ok, err
	}
	if n < lo || n > hi {
		return 0, true, fmt.Errorf("%s must be between %d and %d", key, lo, hi)
	}
	return n, true, nil
}
