package resolver

import "time"

// Options configures a resolver Service. Zero fields are filled from
// DefaultOptions by New.
type Options struct {
	// CacheTTL bounds how long a directory lookup is served from cache.
	CacheTTL time.Duration

	// HealthTimeout is the hard timeout of a single probe attempt.
	HealthTimeout time.Duration

	// Retries is the number of additional probe attempts per candidate.
	Retries int

	// BackoffBase is the delay before the second attempt; doubled for
	// each further attempt, capped at maxBackoffDelay.
	BackoffBase time.Duration

	// LabelSelector selects pods for name enrichment. Empty means
	// "app=<service>".
	LabelSelector string

	// MockMode bypasses the directory and probing entirely and resolves
	// to the fallback endpoint (or a built-in default).
	MockMode bool

	// FallbackHost and FallbackPort form the static last-resort endpoint.
	// Both must be set for the fallback to be configured.
	FallbackHost string
	FallbackPort int32

	// ServeStale controls whether an expired cache entry is served while
	// the directory is temporarily unavailable.
	ServeStale bool
}

func DefaultOptions() Options {
	return Options{
		CacheTTL:      8 * time.Second,
		HealthTimeout: 1500 * time.Millisecond,
		Retries:       2,
		BackoffBase:   200 * time.Millisecond,
		ServeStale:    true,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()

	if o.CacheTTL <= 0 {
		o.CacheTTL = defaults.CacheTTL
	}

	if o.HealthTimeout <= 0 {
		o.HealthTimeout = defaults.HealthTimeout
	}

	if o.Retries < 0 {
		o.Retries = defaults.Retries
	}

	if o.BackoffBase <= 0 {
		o.BackoffBase = defaults.BackoffBase
	}

	return o
}

// ResolveOption overrides one option for a single Resolve call.
type ResolveOption func(*Options)

func WithCacheTTL(ttl time.Duration) ResolveOption {
	return func(o *Options) { o.CacheTTL = ttl }
}

func WithHealthTimeout(timeout time.Duration) ResolveOption {
	return func(o *Options) { o.HealthTimeout = timeout }
}

func WithRetries(retries int) ResolveOption {
	return func(o *Options) { o.Retries = retries }
}

func WithBackoffBase(base time.Duration) ResolveOption {
	return func(o *Options) { o.BackoffBase = base }
}

func WithLabelSelector(selector string) ResolveOption {
	return func(o *Options) { o.LabelSelector = selector }
}
