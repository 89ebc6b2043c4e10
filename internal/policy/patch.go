package policy

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"
)

// PatchAction names one of the structured mutations the gate accepts.
type PatchAction string

// Supported patch actions. The set is closed.
const (
	ActionScale          PatchAction = "scale"
	ActionUpdateImage    PatchAction = "update_image"
	ActionRolloutRestart PatchAction = "rollout_restart"
)

// PatchIntent is a validated structured mutation. The concrete types are
// ScaleIntent, UpdateImageIntent and RolloutRestartIntent.
type PatchIntent interface {
	Action() PatchAction
	TargetPlural() string
	patchIntent()
}

// ScaleIntent sets spec.replicas on a workload.
type ScaleIntent struct {
	Plural   string
	Replicas int32
}

// UpdateImageIntent replaces the image of one container in a workload's pod template.
type UpdateImageIntent struct {
	Plural    string
	Container string
	Image     string
}

// RolloutRestartIntent restarts a workload's pods by touching its pod template.
type RolloutRestartIntent struct {
	Plural string
	Reason string
}

func (ScaleIntent) Action() PatchAction          { return ActionScale }
func (UpdateImageIntent) Action() PatchAction    { return ActionUpdateImage }
func (RolloutRestartIntent) Action() PatchAction { return ActionRolloutRestart }

func (i ScaleIntent) TargetPlural() string          { return i.Plural }
func (i UpdateImageIntent) TargetPlural() string    { return i.Plural }
func (i RolloutRestartIntent) TargetPlural() string { return i.Plural }

func (ScaleIntent) patchIntent()          {}
func (UpdateImageIntent) patchIntent()    {}
func (RolloutRestartIntent) patchIntent() {}

// ParsePatchIntent validates args against the tables and returns the typed
// intent they encode. Any failure is an InvalidPatchIntent denial. Raw patch
// documents are never accepted.
func ParsePatchIntent(t *Tables, args map[string]interface{}) (PatchIntent, error) {
	rawAction, ok := args[ArgAction].(string)
	if !ok || strings.TrimSpace(rawAction) == "" {
		return nil, deny(InvalidPatchIntent, "patch requires an action (one of scale, update_image, rollout_restart)")
	}
	action := PatchAction(normalize(rawAction))
	switch action {
	case ActionScale, ActionUpdateImage, ActionRolloutRestart:
	default:
		return nil, deny(InvalidPatchIntent, "patch action %q is not supported (allowed: scale, update_image, rollout_restart)", rawAction)
	}

	rawPlural, _ := args[ArgPlural].(string)
	plural := normalize(rawPlural)
	if plural == "" {
		return nil, deny(InvalidPatchIntent, "patch action %s requires a plural", action)
	}
	if !t.PatchAllowed(action, plural) {
		return nil, deny(InvalidPatchIntent, "patch action %s is not allowed on %q (allowed: %s)",
			action, rawPlural, strings.Join(t.PatchPlurals(action), ", "))
	}

	switch action {
	case ActionScale:
		return parseScale(t, plural, args)
	case ActionUpdateImage:
		return parseUpdateImage(plural, args)
	default:
		return parseRolloutRestart(t, plural, args)
	}
}

func parseScale(t *Tables, plural string, args map[string]interface{}) (PatchIntent, error) {
	raw, ok := args[ArgReplicas]
	if !ok || raw == nil {
		return nil, deny(InvalidPatchIntent, "scale requires replicas")
	}
	replicas, ok := integerValue(raw)
	minReplicas, maxReplicas := t.ReplicaBounds()
	if !ok {
		return nil, deny(InvalidPatchIntent, "replicas must be an integer between %d and %d", minReplicas, maxReplicas)
	}
	if replicas < int64(minReplicas) || replicas > int64(maxReplicas) {
		return nil, deny(InvalidPatchIntent, "replicas must be between %d and %d, got %d", minReplicas, maxReplicas, replicas)
	}
	return ScaleIntent{Plural: plural, Replicas: int32(replicas)}, nil
}

func parseUpdateImage(plural string, args map[string]interface{}) (PatchIntent, error) {
	container, _ := args[ArgContainer].(string)
	image, _ := args[ArgImage].(string)
	container = strings.TrimSpace(container)
	image = strings.TrimSpace(image)
	if container == "" {
		return nil, deny(InvalidPatchIntent, "update_image requires a non-empty container")
	}
	if image == "" {
		return nil, deny(InvalidPatchIntent, "update_image requires a non-empty image")
	}
	return UpdateImageIntent{Plural: plural, Container: container, Image: image}, nil
}

func parseRolloutRestart(t *Tables, plural string, args map[string]interface{}) (PatchIntent, error) {
	raw, present := args[ArgReason]
	if !present || raw == nil {
		return RolloutRestartIntent{Plural: plural}, nil
	}
	reason, ok := raw.(string)
	if !ok {
		return nil, deny(InvalidPatchIntent, "reason must be a string")
	}
	if n := utf8.RuneCountInString(reason); n > t.MaxReasonLength() {
		return nil, deny(InvalidPatchIntent, "reason must be at most %d characters, got %d", t.MaxReasonLength(), n)
	}
	return RolloutRestartIntent{Plural: plural, Reason: reason}, nil
}

// integerValue accepts the integer shapes a decoded JSON argument can take.
// Floats are accepted only when they carry no fractional part. Booleans and
// strings are rejected.
func integerValue(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
