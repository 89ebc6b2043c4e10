package output

import (
	"strings"
)

// LastAppliedAnnotation duplicates the whole manifest and is always removed.
const LastAppliedAnnotation = "kubectl.kubernetes.io/last-applied-configuration"

// prunedMetadataFields are removed from every object's metadata.
var prunedMetadataFields = []string{
	"managedFields",
	"resourceVersion",
	"uid",
	"selfLink",
	"generation",
	"creationTimestamp",
}

// PruneObject returns a deep copy of obj without noisy metadata. Secret
// values are replaced with RedactedValue, keeping key names.
func PruneObject(obj map[string]interface{}) map[string]interface{} {
	return pruneObject(obj, nil)
}

// PruneList prunes every item of a list object and removes the list's own
// metadata.resourceVersion.
func PruneList(list map[string]interface{}) map[string]interface{} {
	return pruneList(list, nil)
}

// PruneObject prunes obj and also removes the configured extra fields.
func (s *Sanitizer) PruneObject(obj map[string]interface{}) map[string]interface{} {
	return pruneObject(obj, s.config.ExtraPrunedFields)
}

// PruneList prunes list and also removes the configured extra fields from
// every item.
func (s *Sanitizer) PruneList(list map[string]interface{}) map[string]interface{} {
	return pruneList(list, s.config.ExtraPrunedFields)
}

func pruneObject(obj map[string]interface{}, extra []string) map[string]interface{} {
	if obj == nil {
		return nil
	}

	result := deepCopyMap(obj)

	if metadata, ok := result["metadata"].(map[string]interface{}); ok {
		for _, field := range prunedMetadataFields {
			delete(metadata, field)
		}
		if annotations, ok := metadata["annotations"].(map[string]interface{}); ok {
			delete(annotations, LastAppliedAnnotation)
			if len(annotations) == 0 {
				delete(metadata, "annotations")
			}
		}
	}

	if IsSecretResource(result) {
		maskSecretData(result)
	}

	for _, field := range extra {
		removeField(result, field)
	}

	return result
}

func pruneList(list map[string]interface{}, extra []string) map[string]interface{} {
	if list == nil {
		return nil
	}

	result := make(map[string]interface{}, len(list))
	for k, v := range list {
		if k == "items" {
			continue
		}
		result[k] = deepCopyValue(v)
	}

	if metadata, ok := result["metadata"].(map[string]interface{}); ok {
		delete(metadata, "resourceVersion")
	}

	if items, ok := list["items"].([]interface{}); ok {
		pruned := make([]interface{}, len(items))
		for i, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				pruned[i] = pruneObject(m, extra)
				continue
			}
			pruned[i] = deepCopyValue(item)
		}
		result["items"] = pruned
	}

	return result
}

// removeField removes a field at the specified path from a map.
// Supports dot notation for nested fields and [*] for array wildcards.
// Examples:
//   - "metadata.ownerReferences" -> removes obj["metadata"]["ownerReferences"]
//   - "status.conditions[*].lastTransitionTime" -> removes field from all array elements
func removeField(obj map[string]interface{}, path string) {
	if obj == nil || path == "" {
		return
	}

	removeFieldRecursive(obj, strings.Split(path, "."))
}

func removeFieldRecursive(obj map[string]interface{}, parts []string) {
	if len(parts) == 0 || obj == nil {
		return
	}

	current := parts[0]
	remaining := parts[1:]

	if strings.HasSuffix(current, "[*]") {
		array, ok := obj[strings.TrimSuffix(current, "[*]")].([]interface{})
		if !ok || len(remaining) == 0 {
			return
		}
		for _, elem := range array {
			if elemMap, ok := elem.(map[string]interface{}); ok {
				removeFieldRecursive(elemMap, remaining)
			}
		}
		return
	}

	if len(remaining) == 0 {
		delete(obj, current)
		return
	}

	nextMap, ok := obj[current].(map[string]interface{})
	if !ok {
		return
	}
	removeFieldRecursive(nextMap, remaining)
}

// deepCopyMap creates a deep copy of a map.
func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}
	return result
}

// deepCopyValue creates a deep copy of a value.
func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = deepCopyValue(item)
		}
		return result
	default:
		return v
	}
}
