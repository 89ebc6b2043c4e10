package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringArgument(rc RequestContext, key string) string {
	v, _ := rc.Argument(key)
	s, _ := v.(string)
	return s
}

func TestNewRequestContext(t *testing.T) {
	args := map[string]interface{}{
		"plural": "pods",
		"nested": map[string]interface{}{"a": []interface{}{"x"}},
	}

	rc := NewRequestContext("k8s_get", " GET ",
		WithKind(" Pod "), WithNamespace(" default "), WithName("web-0 "),
		WithApproval(true), WithArguments(args))

	assert.Equal(t, "k8s_get", rc.ToolName())
	assert.Equal(t, "get", rc.Verb())
	assert.Equal(t, "Pod", rc.Kind())
	assert.Equal(t, "default", rc.Namespace())
	assert.Equal(t, "web-0", rc.Name())
	assert.True(t, rc.Approved())
	assert.Equal(t, "pods", stringArgument(rc, "plural"))
	assert.Equal(t, []string{"nested", "plural"}, rc.ArgumentKeys())

	t.Run("caller mutations do not leak in", func(t *testing.T) {
		args["plural"] = "secrets"
		args["nested"].(map[string]interface{})["a"].([]interface{})[0] = "y"

		assert.Equal(t, "pods", stringArgument(rc, "plural"))
		nested, ok := rc.Argument("nested")
		require.True(t, ok)
		assert.Equal(t, "x", nested.(map[string]interface{})["a"].([]interface{})[0])
	})

	t.Run("returned copies do not leak out", func(t *testing.T) {
		copied := rc.Arguments()
		copied["plural"] = "secrets"
		assert.Equal(t, "pods", stringArgument(rc, "plural"))
	})
}

func TestRequestContextDefaults(t *testing.T) {
	rc := NewRequestContext("k8s_list", "list")

	assert.Empty(t, rc.Kind())
	assert.False(t, rc.Approved())
	assert.Empty(t, rc.ArgumentKeys())
	assert.Empty(t, stringArgument(rc, "plural"))

	_, ok := rc.Argument("plural")
	assert.False(t, ok)
}

func TestDenialMatching(t *testing.T) {
	err := error(deny(ForbiddenKind, "access to kind %q is forbidden", "Secret"))

	assert.Equal(t, `DENIED: ForbiddenKind: access to kind "Secret" is forbidden`, err.Error())
	assert.ErrorIs(t, err, ErrForbiddenKind)
	assert.NotErrorIs(t, err, ErrMissingScope)
	assert.True(t, IsDenial(err))

	d, ok := AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, ForbiddenKind, d.Kind)

	assert.False(t, IsDenial(assert.AnError))
}
