package config

import "time"

// Env key constants. All resolver configuration env vars use RESOLVER_ prefix;
// duration values support explicit units (e.g. 500ms, 8s, 2m).

// Path to kubeconfig file. If unset, KUBECONFIG is used as fallback.
const envKeyKubeConfig = "RESOLVER_KUBECONFIG"

// Kubernetes API server URL. If unset, KUBERNETES_MASTER is used as fallback.
const envKeyKubeMaster = "RESOLVER_KUBE_MASTER"

// Log level: debug, info, warn, error.
const envKeyLogLevel = "RESOLVER_LOG_LEVEL"

// Log format: json or text.
const envKeyLogFormat = "RESOLVER_LOG_FORMAT"

// Port for the resolution/status HTTP API.
const envKeyHTTPPort = "RESOLVER_HTTP_PORT"

// Port for Prometheus metrics (GET /metrics).
const envKeyMetricsPort = "RESOLVER_METRICS_PORT"

// How long a directory lookup is served from cache before refresh.
const (
	envKeyCacheTTL     = "RESOLVER_CACHE_TTL"
	defaultCacheTTL    = 8 * time.Second
	envMinimumCacheTTL = 100 * time.Millisecond
)

// Hard timeout of a single TCP probe attempt.
const (
	envKeyHealthTimeout  = "RESOLVER_HEALTH_TIMEOUT"
	defaultHealthTimeout = 1500 * time.Millisecond
)

// Additional probe attempts per candidate after the first one fails.
const (
	envKeyRetries  = "RESOLVER_RETRIES"
	defaultRetries = 2
)

// Delay before the second probe attempt; doubled per further attempt.
const (
	envKeyBackoffBase  = "RESOLVER_BACKOFF_BASE"
	defaultBackoffBase = 200 * time.Millisecond
)

// Label selector for pod name enrichment. Empty means app=<service>.
const envKeyLabelSelector = "RESOLVER_LABEL_SELECTOR"

// Mock mode: resolve every service to the fallback endpoint without
// touching the cluster. Values: 1, true, yes.
const envKeyMock = "RESOLVER_MOCK"

// Static last-resort endpoint. KUBE_FALLBACK_HOST/KUBE_FALLBACK_PORT are
// honored as fallbacks for compatibility with existing deployments.
const (
	envKeyFallbackHost = "RESOLVER_FALLBACK_HOST"
	envKeyFallbackPort = "RESOLVER_FALLBACK_PORT"
)

// Whether an expired cache entry is served while the directory is
// temporarily unavailable. Default on.
const envKeyServeStale = "RESOLVER_SERVE_STALE"

// Cron schedule (UTC, 5-field) for dropping expired cache entries.
const (
	envKeySweepSchedule     = "RESOLVER_CACHE_SWEEP_SCHEDULE"
	defaultSweepSchedule    = "*/5 * * * *"
	envKeyPingerInterval    = "RESOLVER_PINGER_INTERVAL"
	defaultPingerInterval   = 30 * time.Second
	envMinimumPingerInterval = time.Second
)

// Legacy env keys used as fallback when RESOLVER_* are unset:
// standard k8s client keys plus the toggles of earlier deployments.
const (
	envKeyKubeConfigFallback   = "KUBECONFIG"
	envKeyKubeMasterFallback   = "KUBERNETES_MASTER"
	envKeyFallbackHostFallback = "KUBE_FALLBACK_HOST"
	envKeyFallbackPortFallback = "KUBE_FALLBACK_PORT"
	envKeyMockFallback         = "KUBESMARTSERVICE_MOCK"
)
