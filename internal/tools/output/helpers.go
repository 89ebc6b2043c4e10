package output

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// PruneUnstructured prunes a single object returned by the dynamic client.
func (s *Sanitizer) PruneUnstructured(obj *unstructured.Unstructured) map[string]interface{} {
	if obj == nil {
		return nil
	}
	return s.PruneObject(obj.Object)
}

// PruneUnstructuredList prunes a list returned by the dynamic client. The
// result is shaped like the list's JSON form, with an "items" array.
func (s *Sanitizer) PruneUnstructuredList(list *unstructured.UnstructuredList) map[string]interface{} {
	if list == nil {
		return nil
	}

	raw := make(map[string]interface{}, len(list.Object)+1)
	for k, v := range list.Object {
		raw[k] = v
	}
	items := make([]interface{}, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, list.Items[i].Object)
	}
	raw["items"] = items

	return s.PruneList(raw)
}
