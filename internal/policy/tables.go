package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DefaultVersion names the built-in policy.
const DefaultVersion = "v1"

// Default numeric bounds.
const (
	DefaultMinReplicas     = 0
	DefaultMaxReplicas     = 100
	DefaultMaxReasonLength = 200
)

// ErrPolicyLoosened is returned by LoadTables when a policy file tries to relax
// one of the built-in rules.
var ErrPolicyLoosened = errors.New("policy file may only tighten the built-in policy")

// stringSet is a set of normalized strings.
type stringSet map[string]struct{}

func newStringSet(values ...string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s stringSet) clone() stringSet {
	out := make(stringSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Tables holds the rule data the gate consults. A Tables value is never
// mutated after construction; every accessor returns a copy.
type Tables struct {
	version string

	forbiddenKinds     stringSet
	forbiddenPlurals   stringSet
	readVerbs          stringSet
	writeVerbs         stringSet
	clusterScopedKinds stringSet
	bulkKeys           stringSet
	patchPlurals       map[PatchAction]stringSet

	minReplicas     int
	maxReplicas     int
	maxReasonLength int
}

// DefaultTables returns the built-in policy. Write verbs are the superset
// observed across every historical rule set, and the bulk keys are stored in
// canonical snake_case form.
func DefaultTables() *Tables {
	return &Tables{
		version:          DefaultVersion,
		forbiddenKinds:   newStringSet("secret", "configmap"),
		forbiddenPlurals: newStringSet("secrets", "configmaps"),
		readVerbs:        newStringSet(VerbList, VerbGet, VerbEvents, VerbPodLogs),
		writeVerbs: newStringSet(
			"create", "apply", "update", VerbPatch, VerbDelete, "replace",
			"scale", "restart", "rollout_restart", "cordon", "drain",
			"taint", "label", "annotate",
		),
		clusterScopedKinds: newStringSet("node"),
		bulkKeys: newStringSet(
			"label_selector", "field_selector", "selector", "selectors",
			"all", "all_namespaces",
		),
		patchPlurals: map[PatchAction]stringSet{
			ActionScale:          newStringSet("deployments", "statefulsets"),
			ActionUpdateImage:    newStringSet("deployments", "statefulsets", "daemonsets"),
			ActionRolloutRestart: newStringSet("deployments", "statefulsets", "daemonsets"),
		},
		minReplicas:     DefaultMinReplicas,
		maxReplicas:     DefaultMaxReplicas,
		maxReasonLength: DefaultMaxReasonLength,
	}
}

// Version returns the policy version label.
func (t *Tables) Version() string { return t.version }

// IsForbiddenKind reports whether kind names a forbidden resource kind.
func (t *Tables) IsForbiddenKind(kind string) bool {
	return t.forbiddenKinds.has(normalize(kind))
}

// IsForbiddenPlural reports whether plural names a forbidden resource. The
// singular spelling matches too, since the API server resolves "secret" to
// secrets.
func (t *Tables) IsForbiddenPlural(plural string) bool {
	n := normalize(plural)
	return t.forbiddenPlurals.has(n) || t.forbiddenKinds.has(n)
}

// CheckResolvedResource applies the forbidden-kind and namespace-scope rules
// to the resource a request resolved to on the cluster. resource is the
// resolved plural and kind the resolved kind. A cluster-scoped resource is
// only reachable when its kind is in the cluster-scoped table.
func (t *Tables) CheckResolvedResource(resource, kind string, namespaced bool) error {
	if t.IsForbiddenPlural(resource) || (kind != "" && t.IsForbiddenKind(kind)) {
		return deny(ForbiddenKind, "access to resource %q is forbidden", resource)
	}
	if !namespaced && !t.IsClusterScopedKind(kind) {
		return deny(MissingScope, "%s is cluster-scoped and cluster-wide access is not permitted", resource)
	}
	return nil
}

// IsReadVerb reports whether verb is in the read set.
func (t *Tables) IsReadVerb(verb string) bool {
	return t.readVerbs.has(normalize(verb))
}

// IsWriteVerb reports whether verb is in the write set.
func (t *Tables) IsWriteVerb(verb string) bool {
	return t.writeVerbs.has(normalize(verb))
}

// IsKnownVerb reports whether verb is in the read or the write set.
func (t *Tables) IsKnownVerb(verb string) bool {
	return t.IsReadVerb(verb) || t.IsWriteVerb(verb)
}

// IsClusterScopedKind reports whether kind is exempt from the namespace
// requirement for get and list.
func (t *Tables) IsClusterScopedKind(kind string) bool {
	return t.clusterScopedKinds.has(normalize(kind))
}

// IsBulkKey reports whether an argument key selects more than one object.
// Keys are canonicalized first, so labelSelector, label-selector and
// label_selector are treated alike.
func (t *Tables) IsBulkKey(key string) bool {
	return t.bulkKeys.has(CanonicalArgumentKey(key))
}

// PatchAllowed reports whether plural may be patched with action.
func (t *Tables) PatchAllowed(action PatchAction, plural string) bool {
	plurals, ok := t.patchPlurals[action]
	if !ok {
		return false
	}
	return plurals.has(normalize(plural))
}

// ReplicaBounds returns the inclusive replica range accepted by scale.
func (t *Tables) ReplicaBounds() (minReplicas, maxReplicas int) {
	return t.minReplicas, t.maxReplicas
}

// MaxReasonLength returns the longest accepted rollout_restart reason in characters.
func (t *Tables) MaxReasonLength() int { return t.maxReasonLength }

// ForbiddenKinds returns the forbidden kinds, sorted.
func (t *Tables) ForbiddenKinds() []string { return t.forbiddenKinds.sorted() }

// ForbiddenPlurals returns the forbidden plurals, sorted.
func (t *Tables) ForbiddenPlurals() []string { return t.forbiddenPlurals.sorted() }

// ReadVerbs returns the read verbs, sorted.
func (t *Tables) ReadVerbs() []string { return t.readVerbs.sorted() }

// WriteVerbs returns the write verbs, sorted.
func (t *Tables) WriteVerbs() []string { return t.writeVerbs.sorted() }

// ClusterScopedKinds returns the kinds exempt from the namespace requirement, sorted.
func (t *Tables) ClusterScopedKinds() []string { return t.clusterScopedKinds.sorted() }

// BulkKeys returns the canonical bulk argument keys, sorted.
func (t *Tables) BulkKeys() []string { return t.bulkKeys.sorted() }

// PatchPlurals returns the plurals allowed for action, sorted.
func (t *Tables) PatchPlurals(action PatchAction) []string {
	plurals, ok := t.patchPlurals[action]
	if !ok {
		return nil
	}
	return plurals.sorted()
}

// clone returns a deep copy used as the starting point when applying a file.
func (t *Tables) clone() *Tables {
	c := *t
	c.forbiddenKinds = t.forbiddenKinds.clone()
	c.forbiddenPlurals = t.forbiddenPlurals.clone()
	c.readVerbs = t.readVerbs.clone()
	c.writeVerbs = t.writeVerbs.clone()
	c.clusterScopedKinds = t.clusterScopedKinds.clone()
	c.bulkKeys = t.bulkKeys.clone()
	c.patchPlurals = make(map[PatchAction]stringSet, len(t.patchPlurals))
	for action, plurals := range t.patchPlurals {
		c.patchPlurals[action] = plurals.clone()
	}
	return &c
}

// File is the on-disk policy format. Every field is optional and can only
// make the built-in policy stricter.
type File struct {
	Version string `yaml:"version"`

	// ForbiddenKinds and ForbiddenPlurals are added to the built-in sets.
	ForbiddenKinds   []string `yaml:"forbiddenKinds,omitempty"`
	ForbiddenPlurals []string `yaml:"forbiddenPlurals,omitempty"`

	// DisabledVerbs are removed from the read and write sets entirely.
	DisabledVerbs []string `yaml:"disabledVerbs,omitempty"`

	// ApprovalVerbs moves known verbs into the write set so they need approval.
	ApprovalVerbs []string `yaml:"approvalVerbs,omitempty"`

	// BulkForbiddenArgumentKeys are added to the bulk key set.
	BulkForbiddenArgumentKeys []string `yaml:"bulkForbiddenArgumentKeys,omitempty"`

	// PatchAllowedPlurals narrows the per-action allow-lists.
	PatchAllowedPlurals map[string][]string `yaml:"patchAllowedPlurals,omitempty"`

	Replicas        *ReplicaBounds `yaml:"replicas,omitempty"`
	MaxReasonLength *int           `yaml:"maxReasonLength,omitempty"`
}

// ReplicaBounds is the replica range section of a policy file.
type ReplicaBounds struct {
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`
}

// LoadTables reads a YAML policy file and applies it on top of DefaultTables.
// An empty path returns the defaults.
func LoadTables(path string) (*Tables, error) {
	base := DefaultTables()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	return ParseTables(data)
}

// ParseTables parses a YAML policy document and applies it on top of DefaultTables.
func ParseTables(data []byte) (*Tables, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return f.Apply(DefaultTables())
}

// Apply returns a copy of base with the file's restrictions applied.
func (f *File) Apply(base *Tables) (*Tables, error) {
	t := base.clone()

	if v := strings.TrimSpace(f.Version); v != "" {
		t.version = v
	}

	for _, k := range f.ForbiddenKinds {
		if k = normalize(k); k != "" {
			t.forbiddenKinds[k] = struct{}{}
		}
	}
	for _, p := range f.ForbiddenPlurals {
		if p = normalize(p); p != "" {
			t.forbiddenPlurals[p] = struct{}{}
		}
	}

	for _, v := range f.ApprovalVerbs {
		v = normalize(v)
		if !t.IsKnownVerb(v) {
			return nil, fmt.Errorf("%w: approvalVerbs entry %q is not a known verb", ErrPolicyLoosened, v)
		}
		delete(t.readVerbs, v)
		t.writeVerbs[v] = struct{}{}
	}
	for _, v := range f.DisabledVerbs {
		v = normalize(v)
		delete(t.readVerbs, v)
		delete(t.writeVerbs, v)
	}

	for _, k := range f.BulkForbiddenArgumentKeys {
		if k = CanonicalArgumentKey(k); k != "" {
			t.bulkKeys[k] = struct{}{}
		}
	}

	for rawAction, plurals := range f.PatchAllowedPlurals {
		action := PatchAction(normalize(rawAction))
		current, ok := t.patchPlurals[action]
		if !ok {
			return nil, fmt.Errorf("%w: unknown patch action %q", ErrPolicyLoosened, rawAction)
		}
		narrowed := newStringSet()
		for _, p := range plurals {
			p = normalize(p)
			if !current.has(p) {
				return nil, fmt.Errorf("%w: plural %q is not allowed for %s", ErrPolicyLoosened, p, action)
			}
			narrowed[p] = struct{}{}
		}
		t.patchPlurals[action] = narrowed
	}

	if f.Replicas != nil {
		if f.Replicas.Min != nil {
			if *f.Replicas.Min < t.minReplicas {
				return nil, fmt.Errorf("%w: replicas.min %d is below %d", ErrPolicyLoosened, *f.Replicas.Min, t.minReplicas)
			}
			t.minReplicas = *f.Replicas.Min
		}
		if f.Replicas.Max != nil {
			if *f.Replicas.Max > t.maxReplicas {
				return nil, fmt.Errorf("%w: replicas.max %d is above %d", ErrPolicyLoosened, *f.Replicas.Max, t.maxReplicas)
			}
			t.maxReplicas = *f.Replicas.Max
		}
		if t.minReplicas > t.maxReplicas {
			return nil, fmt.Errorf("replicas.min %d is greater than replicas.max %d", t.minReplicas, t.maxReplicas)
		}
	}

	if f.MaxReasonLength != nil {
		if *f.MaxReasonLength > t.maxReasonLength {
			return nil, fmt.Errorf("%w: maxReasonLength %d is above %d", ErrPolicyLoosened, *f.MaxReasonLength, t.maxReasonLength)
		}
		if *f.MaxReasonLength < 0 {
			return nil, fmt.Errorf("maxReasonLength must not be negative, got %d", *f.MaxReasonLength)
		}
		t.maxReasonLength = *f.MaxReasonLength
	}

	return t, nil
}

// ToFile renders the effective tables in the policy file format.
func (t *Tables) ToFile() *File {
	minReplicas, maxReplicas := t.ReplicaBounds()
	reason := t.maxReasonLength

	f := &File{
		Version:                   t.version,
		ForbiddenKinds:            t.ForbiddenKinds(),
		ForbiddenPlurals:          t.ForbiddenPlurals(),
		ApprovalVerbs:             t.WriteVerbs(),
		BulkForbiddenArgumentKeys: t.BulkKeys(),
		PatchAllowedPlurals:       make(map[string][]string, len(t.patchPlurals)),
		Replicas:                  &ReplicaBounds{Min: &minReplicas, Max: &maxReplicas},
		MaxReasonLength:           &reason,
	}
	for action := range t.patchPlurals {
		f.PatchAllowedPlurals[string(action)] = t.PatchPlurals(action)
	}
	return f
}

// MarshalYAML renders the effective tables as YAML, including the read verbs
// and cluster-scoped kinds which the file format does not carry.
func (t *Tables) MarshalYAML() (interface{}, error) {
	type view struct {
		File               `yaml:",inline"`
		ReadVerbs          []string `yaml:"readVerbs"`
		ClusterScopedKinds []string `yaml:"clusterScopedKinds"`
	}
	return view{File: *t.ToFile(), ReadVerbs: t.ReadVerbs(), ClusterScopedKinds: t.ClusterScopedKinds()}, nil
}

// normalize lowercases and trims a kind, plural or verb.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalArgumentKey folds camelCase, kebab-case and mixed-case argument
// keys into lowercase snake_case.
func CanonicalArgumentKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	b.Grow(len(key) + 4)

	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
