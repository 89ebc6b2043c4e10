// Package testdata provides mock implementations for testing the tool packages.
package testdata

import (
	"context"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/giantswarm/mcp-k8s-agent/internal/k8s"
	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
	"github.com/giantswarm/mcp-k8s-agent/internal/server"
)

// Compile-time interface compliance checks.
var (
	_ k8s.Backend   = (*MockBackend)(nil)
	_ server.Logger = (*MockLogger)(nil)
)

// MockBackend implements k8s.Backend for handler tests. It counts every call
// and remembers the arguments of the last one, so tests can assert that a
// denied request never reached the cluster.
type MockBackend struct {
	mu sync.Mutex

	// Canned results. A nil response with a nil error yields an empty object.
	GetResponse    k8s.Response
	ListResponse   k8s.Response
	DeleteResponse k8s.Response
	PatchResponse  k8s.Response
	EventsResponse k8s.Response
	Logs           string
	Err            error
	NotReady       bool

	calls map[string]int

	LastCoordinate    k8s.ResourceCoordinate
	LastListOptions   k8s.ListOptions
	LastDeleteOptions k8s.DeleteOptions
	LastLogOptions    k8s.LogOptions
	LastIntent        policy.PatchIntent
	LastNamespace     string
	LastPod           string
	LastLimit         int64
}

func (m *MockBackend) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how often method was invoked.
func (m *MockBackend) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls returns the number of backend calls of any kind. Ready is not
// counted.
func (m *MockBackend) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func orEmpty(resp k8s.Response) k8s.Response {
	if resp != nil {
		return resp
	}
	return k8s.NewSingleResponse(&unstructured.Unstructured{Object: map[string]interface{}{}})
}

// Get implements k8s.Backend.
func (m *MockBackend) Get(_ context.Context, coord k8s.ResourceCoordinate) (k8s.Response, error) {
	m.record("Get")
	m.LastCoordinate = coord
	if m.Err != nil {
		return nil, m.Err
	}
	return orEmpty(m.GetResponse), nil
}

// List implements k8s.Backend.
func (m *MockBackend) List(_ context.Context, coord k8s.ResourceCoordinate, opts k8s.ListOptions) (k8s.Response, error) {
	m.record("List")
	m.LastCoordinate = coord
	m.LastListOptions = opts
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ListResponse == nil {
		return k8s.NewCollectionResponse(nil), nil
	}
	return m.ListResponse, nil
}

// Delete implements k8s.Backend.
func (m *MockBackend) Delete(_ context.Context, coord k8s.ResourceCoordinate, opts k8s.DeleteOptions) (k8s.Response, error) {
	m.record("Delete")
	m.LastCoordinate = coord
	m.LastDeleteOptions = opts
	if m.Err != nil {
		return nil, m.Err
	}
	return orEmpty(m.DeleteResponse), nil
}

// Patch implements k8s.Backend.
func (m *MockBackend) Patch(_ context.Context, coord k8s.ResourceCoordinate, intent policy.PatchIntent) (k8s.Response, error) {
	m.record("Patch")
	m.LastCoordinate = coord
	m.LastIntent = intent
	if m.Err != nil {
		return nil, m.Err
	}
	return orEmpty(m.PatchResponse), nil
}

// Events implements k8s.Backend.
func (m *MockBackend) Events(_ context.Context, namespace string, limit int64) (k8s.Response, error) {
	m.record("Events")
	m.LastNamespace = namespace
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	if m.EventsResponse == nil {
		return k8s.NewCollectionResponse(nil), nil
	}
	return m.EventsResponse, nil
}

// PodLogs implements k8s.Backend.
func (m *MockBackend) PodLogs(_ context.Context, namespace, pod string, opts k8s.LogOptions) (string, error) {
	m.record("PodLogs")
	m.LastNamespace = namespace
	m.LastPod = pod
	m.LastLogOptions = opts
	if m.Err != nil {
		return "", m.Err
	}
	return m.Logs, nil
}

// Ready implements k8s.Backend.
func (m *MockBackend) Ready() bool { return !m.NotReady }

// MockLogger implements server.Logger and discards everything.
type MockLogger struct{}

func (m *MockLogger) Debug(_ string, _ ...interface{}) {}
func (m *MockLogger) Info(_ string, _ ...interface{})  {}
func (m *MockLogger) Warn(_ string, _ ...interface{})  {}
func (m *MockLogger) Error(_ string, _ ...interface{}) {}

// NewServerContext builds a ServerContext around backend with the default
// policy and sanitizer.
func NewServerContext(backend k8s.Backend, opts ...server.Option) (*server.ServerContext, error) {
	all := append([]server.Option{
		server.WithBackend(backend),
		server.WithLogger(&MockLogger{}),
	}, opts...)
	return server.NewServerContext(context.Background(), all...)
}
