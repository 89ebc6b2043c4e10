package k8s

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Response is what a Backend call returns: either one object or a collection.
// The concrete types are *SingleResponse and *CollectionResponse.
type Response interface {
	// Objects returns the contained objects uniformly.
	Objects() []*unstructured.Unstructured

	isResponse()
}

// SingleResponse holds one object.
type SingleResponse struct {
	Object *unstructured.Unstructured
}

// CollectionResponse holds a list and its list-level metadata.
type CollectionResponse struct {
	List *unstructured.UnstructuredList
}

// NewSingleResponse wraps obj.
func NewSingleResponse(obj *unstructured.Unstructured) *SingleResponse {
	return &SingleResponse{Object: obj}
}

// NewCollectionResponse wraps list.
func NewCollectionResponse(list *unstructured.UnstructuredList) *CollectionResponse {
	if list == nil {
		list = &unstructured.UnstructuredList{}
	}
	return &CollectionResponse{List: list}
}

// Objects returns the single object, or nothing when it is nil.
func (r *SingleResponse) Objects() []*unstructured.Unstructured {
	if r == nil || r.Object == nil {
		return nil
	}
	return []*unstructured.Unstructured{r.Object}
}

// Objects returns pointers to every list item.
func (r *CollectionResponse) Objects() []*unstructured.Unstructured {
	if r == nil || r.List == nil {
		return nil
	}
	out := make([]*unstructured.Unstructured, 0, len(r.List.Items))
	for i := range r.List.Items {
		out = append(out, &r.List.Items[i])
	}
	return out
}

// Continue returns the pagination token of the list, if any.
func (r *CollectionResponse) Continue() string {
	if r == nil || r.List == nil {
		return ""
	}
	return r.List.GetContinue()
}

func (*SingleResponse) isResponse()     {}
func (*CollectionResponse) isResponse() {}
