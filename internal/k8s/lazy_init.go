package k8s

import "sync"

// lazyValue holds a value built on first use. Concurrent callers share one
// initialization; a failed initialization is not remembered, so the next
// caller tries again.
type lazyValue[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
}

// Get returns the stored value, building it with build if needed.
func (l *lazyValue[T]) Get(build func() (T, error)) (T, error) {
	if v, ok := l.load(); ok {
		return v, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		return l.value, nil
	}

	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value, l.set = v, true
	return v, nil
}

// IsSet reports whether a value is stored.
func (l *lazyValue[T]) IsSet() bool {
	_, ok := l.load()
	return ok
}

// Reset forgets the stored value so the next Get builds a fresh one.
func (l *lazyValue[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.value, l.set = zero, false
}

func (l *lazyValue[T]) load() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.set
}
