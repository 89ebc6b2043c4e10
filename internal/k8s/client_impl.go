package k8s

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// ClientConfig holds configuration for the cluster backend.
type ClientConfig struct {
	// Kubeconfig settings
	KubeconfigPath string
	Context        string

	// Use in-cluster service account authentication instead of kubeconfig
	InCluster bool

	// Performance settings
	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	// Debug settings
	DebugMode bool

	// Logging
	Logger Logger
}

// clusterClients bundles the clients created on first use.
type clusterClients struct {
	dynamic dynamic.Interface
	typed   kubernetes.Interface
	mapper  meta.RESTMapper

	// resetMapper drops cached discovery so a newly installed CRD can be found.
	resetMapper func()
}

// ClusterBackend implements Backend with client-go. Clients are created on
// first use and shared by every later call.
type ClusterBackend struct {
	config   *ClientConfig
	clients  lazyValue[*clusterClients]
	factory  func() (*clusterClients, error)
	builtin  map[string]builtinResource
	tables   *policy.Tables
	now      func() time.Time
	fieldMgr string
}

var _ Backend = (*ClusterBackend)(nil)

// BackendOption configures a ClusterBackend.
type BackendOption func(*ClusterBackend)

// WithClients injects ready-made clients instead of building them from the
// kubeconfig. A nil mapper makes every lookup use the fallback table.
func WithClients(dyn dynamic.Interface, typed kubernetes.Interface, mapper meta.RESTMapper) BackendOption {
	return func(b *ClusterBackend) {
		b.factory = func() (*clusterClients, error) {
			return &clusterClients{dynamic: dyn, typed: typed, mapper: mapper}, nil
		}
	}
}

// WithPolicyTables sets the tables every resolved resource is checked
// against. The default is policy.DefaultTables.
func WithPolicyTables(tables *policy.Tables) BackendOption {
	return func(b *ClusterBackend) {
		if tables != nil {
			b.tables = tables
		}
	}
}

// WithClock sets the time source used for restart annotations.
func WithClock(now func() time.Time) BackendOption {
	return func(b *ClusterBackend) {
		if now != nil {
			b.now = now
		}
	}
}

// WithFieldManager sets the field manager recorded on patches.
func WithFieldManager(name string) BackendOption {
	return func(b *ClusterBackend) {
		if name != "" {
			b.fieldMgr = name
		}
	}
}

// NewBackend creates a backend. No connection is made until first use; call
// Validate to check the authentication source up front.
func NewBackend(config *ClientConfig, opts ...BackendOption) (*ClusterBackend, error) {
	if config == nil {
		return nil, fmt.Errorf("client configuration is required")
	}

	cfg := *config
	if cfg.QPSLimit == 0 {
		cfg.QPSLimit = DefaultQPSLimit
	}
	if cfg.BurstLimit == 0 {
		cfg.BurstLimit = DefaultBurstLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout * time.Second
	}

	b := &ClusterBackend{
		config:   &cfg,
		builtin:  initBuiltinResources(),
		tables:   policy.DefaultTables(),
		now:      time.Now,
		fieldMgr: "mcp-k8s-agent",
	}
	b.factory = b.buildClients

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Validate checks that the configured authentication source is usable.
func (b *ClusterBackend) Validate() error {
	if b.config.InCluster {
		return validateInClusterEnvironment()
	}
	_, err := b.loadingConfig().RawConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return nil
}

// Warmup creates the clients now instead of on the first tool call.
func (b *ClusterBackend) Warmup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.getClients()
	return err
}

// Ready reports whether the clients have been created.
func (b *ClusterBackend) Ready() bool {
	return b.clients.IsSet()
}

// CurrentContext returns the kubeconfig context in use.
func (b *ClusterBackend) CurrentContext() string {
	if b.config.InCluster {
		return InClusterContext
	}
	if b.config.Context != "" {
		return b.config.Context
	}
	raw, err := b.loadingConfig().RawConfig()
	if err != nil {
		return ""
	}
	return raw.CurrentContext
}

func (b *ClusterBackend) getClients() (*clusterClients, error) {
	return b.clients.Get(b.factory)
}

// validateInClusterEnvironment checks if the required in-cluster authentication files are present.
func validateInClusterEnvironment() error {
	if _, err := os.Stat(DefaultTokenPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("service account token not found at %s", DefaultTokenPath)
	}
	if _, err := os.Stat(DefaultCACertPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("service account CA certificate not found at %s", DefaultCACertPath)
	}
	return nil
}

// loadingConfig builds the kubeconfig loader, honouring KUBECONFIG with a
// leading "~/".
func (b *ClusterBackend) loadingConfig() clientcmd.ClientConfig {
	path := b.config.KubeconfigPath
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		loadingRules.ExplicitPath = path
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		&clientcmd.ConfigOverrides{CurrentContext: b.config.Context},
	)
}

// restConfig returns a rest.Config with the performance settings applied.
func (b *ClusterBackend) restConfig() (*rest.Config, error) {
	var restConfig *rest.Config
	var err error

	if b.config.InCluster {
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster rest config: %w", err)
		}
	} else {
		restConfig, err = b.loadingConfig().ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create rest config for context %q: %w", b.config.Context, err)
		}
	}

	restConfig.QPS = b.config.QPSLimit
	restConfig.Burst = b.config.BurstLimit
	restConfig.Timeout = b.config.Timeout

	b.debug("created rest config", "host", restConfig.Host, "qps", restConfig.QPS, "burst", restConfig.Burst)
	return restConfig, nil
}

// buildClients creates the dynamic and typed clients and a discovery-backed
// REST mapper with an in-memory cache.
func (b *ClusterBackend) buildClients() (*clusterClients, error) {
	restConfig, err := b.restConfig()
	if err != nil {
		return nil, err
	}

	dyn, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	typed, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	cached := memory.NewMemCacheClient(typed.Discovery())
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(cached)

	if b.config.Logger != nil {
		b.config.Logger.Info("cluster clients initialized", "context", b.CurrentContext(), "host", restConfig.Host)
	}

	return &clusterClients{
		dynamic:     dyn,
		typed:       typed,
		mapper:      mapper,
		resetMapper: mapper.Reset,
	}, nil
}

func (b *ClusterBackend) debug(msg string, args ...interface{}) {
	if b.config.DebugMode && b.config.Logger != nil {
		b.config.Logger.Debug(msg, args...)
	}
}
