package output

// Default limits for sanitizing tool output.
const (
	// DefaultMaxLines is the number of lines kept before truncation.
	DefaultMaxLines = 500

	// DefaultEntropyThreshold is the bits-per-character value a candidate run
	// must exceed to be redacted.
	DefaultEntropyThreshold = 4.0

	// MinEntropyThreshold is the lowest accepted threshold. Anything lower
	// would redact ordinary identifiers.
	MinEntropyThreshold = 3.0

	// DefaultMinEntropyRunLength is the shortest base64-alphabet run that is
	// considered for entropy redaction.
	DefaultMinEntropyRunLength = 20

	// MinEntropyRunLength is the lowest accepted run length.
	MinEntropyRunLength = 8

	// DefaultMaxItems is the default number of objects returned by list tools.
	DefaultMaxItems = 100

	// AbsoluteMaxItems caps the per-request list limit.
	AbsoluteMaxItems = 500
)

// Config holds the sanitizer settings. Operators may make the sanitizer
// stricter, never looser. Validate caps MaxLines, EntropyThreshold and
// MinEntropyRunLength at their defaults; MaxItems only bounds a default page
// size and is capped at AbsoluteMaxItems.
type Config struct {
	// MaxLines is the line budget kept by the truncation stage.
	// Default: 500, accepted range: [1, 500]
	MaxLines int `json:"maxLines" yaml:"maxLines"`

	// EntropyThreshold is compared against the Shannon entropy of each run.
	// Default: 4.0, accepted range: [3.0, 4.0]
	EntropyThreshold float64 `json:"entropyThreshold" yaml:"entropyThreshold"`

	// MinEntropyRunLength is the minimum length of a candidate run.
	// Default: 20, accepted range: [8, 20]
	MinEntropyRunLength int `json:"minEntropyRunLength" yaml:"minEntropyRunLength"`

	// MaxItems is the default list limit when a request does not set one.
	// Default: 100, absolute max: 500
	MaxItems int `json:"maxItems" yaml:"maxItems"`

	// ExtraPrunedFields lists additional dot-separated paths removed from every
	// object, on top of the fixed metadata fields.
	ExtraPrunedFields []string `json:"extraPrunedFields,omitempty" yaml:"extraPrunedFields,omitempty"`
}

// DefaultConfig returns the fixed sanitizer settings.
func DefaultConfig() *Config {
	return &Config{
		MaxLines:            DefaultMaxLines,
		EntropyThreshold:    DefaultEntropyThreshold,
		MinEntropyRunLength: DefaultMinEntropyRunLength,
		MaxItems:            DefaultMaxItems,
	}
}

// Validate returns a copy with unset values defaulted and out-of-range
// values capped.
func (c *Config) Validate() *Config {
	validated := *c

	if validated.MaxLines <= 0 || validated.MaxLines > DefaultMaxLines {
		validated.MaxLines = DefaultMaxLines
	}

	if validated.EntropyThreshold <= 0 || validated.EntropyThreshold > DefaultEntropyThreshold {
		validated.EntropyThreshold = DefaultEntropyThreshold
	}
	if validated.EntropyThreshold < MinEntropyThreshold {
		validated.EntropyThreshold = MinEntropyThreshold
	}

	if validated.MinEntropyRunLength <= 0 || validated.MinEntropyRunLength > DefaultMinEntropyRunLength {
		validated.MinEntropyRunLength = DefaultMinEntropyRunLength
	}
	if validated.MinEntropyRunLength < MinEntropyRunLength {
		validated.MinEntropyRunLength = MinEntropyRunLength
	}

	if validated.MaxItems <= 0 {
		validated.MaxItems = DefaultMaxItems
	}
	if validated.MaxItems > AbsoluteMaxItems {
		validated.MaxItems = AbsoluteMaxItems
	}

	return validated.Clone()
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.ExtraPrunedFields != nil {
		clone.ExtraPrunedFields = make([]string, len(c.ExtraPrunedFields))
		copy(clone.ExtraPrunedFields, c.ExtraPrunedFields)
	}
	return &clone
}

// Report describes what the sanitizer changed in one piece of text.
type Report struct {
	// Redactions counts replacements per label, e.g. "token" or "high-entropy".
	Redactions map[string]int `json:"redactions,omitempty"`

	// Truncated is true when lines were dropped.
	Truncated bool `json:"truncated"`

	// OriginalLines is the line count before truncation.
	OriginalLines int `json:"originalLines"`
}

// TotalRedactions sums the per-label counts.
func (r Report) TotalRedactions() int {
	total := 0
	for _, n := range r.Redactions {
		total += n
	}
	return total
}
