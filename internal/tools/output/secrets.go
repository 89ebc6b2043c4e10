package output

import (
	"strings"
)

// RedactedValue replaces each Secret value during pruning.
const RedactedValue = "[REDACTED]"

// secretDataFields are the Secret maps whose values are blanked.
var secretDataFields = []string{"data", "stringData"}

// IsSecretResource checks if a resource is a Kubernetes Secret.
func IsSecretResource(obj map[string]interface{}) bool {
	if obj == nil {
		return false
	}

	kind, _ := obj["kind"].(string)
	return strings.EqualFold(strings.TrimSpace(kind), "Secret")
}

// maskSecretData blanks the values of data and stringData in place, keeping
// the key names.
func maskSecretData(secret map[string]interface{}) {
	for _, field := range secretDataFields {
		values, ok := secret[field].(map[string]interface{})
		if !ok {
			continue
		}
		masked := make(map[string]interface{}, len(values))
		for key := range values {
			masked[key] = RedactedValue
		}
		secret[field] = masked
	}
}
