package k8s

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyValueBuildsOnce(t *testing.T) {
	var lv lazyValue[*clusterClients]
	var builds int

	build := func() (*clusterClients, error) {
		builds++
		return &clusterClients{}, nil
	}

	first, err := lv.Get(build)
	require.NoError(t, err)
	second, err := lv.Get(build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.True(t, lv.IsSet())
}

func TestLazyValueRetriesAfterFailure(t *testing.T) {
	var lv lazyValue[string]
	attempts := 0

	build := func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("kubeconfig not found")
		}
		return "ready", nil
	}

	_, err := lv.Get(build)
	require.Error(t, err)
	assert.False(t, lv.IsSet())

	v, err := lv.Get(build)
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, 2, attempts)
}

func TestLazyValueReset(t *testing.T) {
	var lv lazyValue[int]
	n := 0
	build := func() (int, error) {
		n++
		return n, nil
	}

	v, err := lv.Get(build)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	lv.Reset()
	assert.False(t, lv.IsSet())

	v, err = lv.Get(build)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLazyValueConcurrentFirstUse(t *testing.T) {
	var lv lazyValue[int]
	var builds atomic.Int32

	var wg sync.WaitGroup
	results := make([]int, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := lv.Get(func() (int, error) {
				builds.Add(1)
				return 7, nil
			})
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}
