package output

import (
	"regexp"
)

// Sanitizer applies pattern redaction, entropy redaction and truncation, in
// that order. It holds only immutable state and is safe for concurrent use.
type Sanitizer struct {
	config     *Config
	candidates *regexp.Regexp
}

// NewSanitizer creates a sanitizer. A nil config uses DefaultConfig.
func NewSanitizer(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	validated := config.Validate()
	return &Sanitizer{
		config:     validated,
		candidates: entropyCandidates(validated.MinEntropyRunLength),
	}
}

// Config returns a copy of the sanitizer's validated configuration.
func (s *Sanitizer) Config() *Config {
	return s.config.Clone()
}

// Sanitize scrubs raw for the tool named toolName. The tool name does not
// currently change the result.
func (s *Sanitizer) Sanitize(toolName, raw string) string {
	text, _ := s.SanitizeWithReport(toolName, raw)
	return text
}

// SanitizeWithReport scrubs raw and reports what was changed.
func (s *Sanitizer) SanitizeWithReport(_ string, raw string) (string, Report) {
	counts := make(map[string]int)

	text := redactPatterns(raw, counts)
	text = redactHighEntropy(text, s.candidates, s.config.EntropyThreshold, counts)
	text, truncated, lines := TruncateLines(text, s.config.MaxLines)

	report := Report{Truncated: truncated, OriginalLines: lines}
	if len(counts) > 0 {
		report.Redactions = counts
	}
	return text, report
}

var defaultSanitizer = NewSanitizer(nil)

// Sanitize scrubs raw with the default configuration.
func Sanitize(toolName, raw string) string {
	return defaultSanitizer.Sanitize(toolName, raw)
}
