package server

import (
	"context"

	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// stubBackend satisfies k8s.Backend. Only Ready is meaningful.
type stubBackend struct {
	ready bool
}

var _ k8s.Backend = (*stubBackend)(nil)

func (b *stubBackend) Get(context.Context, k8s.ResourceCoordinate) (k8s.Response, error) {
	return nil, nil
}

func (b *stubBackend) List(context.Context, k8s.ResourceCoordinate, k8s.ListOptions) (k8s.Response, error) {
	return nil, nil
}

func (b *stubBackend) Delete(context.Context, k8s.ResourceCoordinate, k8s.DeleteOptions) (k8s.Response, error) {
	return nil, nil
}

func (b *stubBackend) Patch(context.Context, k8s.ResourceCoordinate, policy.PatchIntent) (k8s.Response, error) {
	return nil, nil
}

func (b *stubBackend) Events(context.Context, string, int64) (k8s.Response, error) {
	return nil, nil
}

func (b *stubBackend) PodLogs(context.Context, string, string, k8s.LogOptions) (string, error) {
	return "", nil
}

func (b *stubBackend) Ready() bool { return b.ready }

// recordingLogger captures messages by level.
type recordingLogger struct {
	debug, info, warn, error []string
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.info = append(l.info, msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.error = append(l.error, msg) }
