package k8s

import (
	"encoding/json"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/types"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// BuildPatch turns a validated intent into a patch body. It only accepts the
// intents produced by the policy package, so callers never supply raw patch
// documents.
func BuildPatch(intent policy.PatchIntent, now time.Time) (types.PatchType, []byte, error) {
	var (
		patchType types.PatchType
		body      map[string]interface{}
	)

	switch in := intent.(type) {
	case policy.ScaleIntent:
		patchType = types.MergePatchType
		body = map[string]interface{}{
			"spec": map[string]interface{}{"replicas": in.Replicas},
		}

	case policy.UpdateImageIntent:
		patchType = types.StrategicMergePatchType
		body = podTemplatePatch(map[string]interface{}{
			"spec": map[string]interface{}{
				"containers": []interface{}{
					map[string]interface{}{"name": in.Container, "image": in.Image},
				},
			},
		})

	case policy.RolloutRestartIntent:
		patchType = types.StrategicMergePatchType
		annotations := map[string]interface{}{
			RestartedAtAnnotation: now.UTC().Format(time.RFC3339),
		}
		if in.Reason != "" {
			annotations[ChangeCauseAnnotation] = in.Reason
		}
		body = podTemplatePatch(map[string]interface{}{
			"metadata": map[string]interface{}{"annotations": annotations},
		})

	default:
		return "", nil, fmt.Errorf("%w: unsupported intent %T", ErrIntentMismatch, intent)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode patch: %w", err)
	}
	return patchType, data, nil
}

// podTemplatePatch nests template under spec.template.
func podTemplatePatch(template map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"spec": map[string]interface{}{"template": template},
	}
}
