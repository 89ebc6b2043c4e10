package output

import (
	"fmt"
	"regexp"
)

// Redaction labels.
const (
	LabelPassword    = "password"
	LabelToken       = "token"
	LabelAPIKey      = "api-key"
	LabelBearer      = "bearer"
	LabelJWT         = "jwt"
	LabelHighEntropy = "high-entropy"
)

type redactionRule struct {
	label   string
	pattern *regexp.Regexp
}

// redactionRules run in order. Only the JWT rule is case-sensitive, since the
// "eyJ" prefix is the base64 encoding of `{"`.
var redactionRules = []redactionRule{
	{label: LabelPassword, pattern: regexp.MustCompile(`(?i)password\s*=\s*\S+`)},
	{label: LabelToken, pattern: regexp.MustCompile(`(?i)token\s*=\s*\S+`)},
	{label: LabelAPIKey, pattern: regexp.MustCompile(`(?i)api[_-]?key\s*=\s*\S+`)},
	{label: LabelBearer, pattern: regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.]+`)},
	{label: LabelJWT, pattern: regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`)},
}

// Marker returns the replacement text for label.
func Marker(label string) string {
	return fmt.Sprintf("[REDACTED: %s]", label)
}

// redactPatterns applies every rule in order and counts replacements per label.
func redactPatterns(text string, counts map[string]int) string {
	for _, rule := range redactionRules {
		marker := Marker(rule.label)
		text = rule.pattern.ReplaceAllStringFunc(text, func(string) string {
			counts[rule.label]++
			return marker
		})
	}
	return text
}
