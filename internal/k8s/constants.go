package k8s

// In-cluster service account files mounted into every pod.
const (
	DefaultServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
	DefaultTokenPath          = DefaultServiceAccountPath + "/token"
	DefaultCACertPath         = DefaultServiceAccountPath + "/ca.crt"

	// InClusterContext is reported as the current context when running in a pod.
	InClusterContext = "in-cluster"
)

// Client-side rate limits and the per-call timeout in seconds.
const (
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30
)

const (
	RestartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"
	ChangeCauseAnnotation = "kubernetes.io/change-cause"

	// MaxLogBytes caps how much of a pod log is read into memory.
	MaxLogBytes = 4 << 20
)
