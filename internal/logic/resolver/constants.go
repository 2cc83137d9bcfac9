package resolver

import "time"

const (
	// FallbackIdentifier is the active-pod sentinel reported while the
	// static fallback endpoint is in use.
	FallbackIdentifier = "fallback"

	// DefaultNamespace is used when the caller passes an empty namespace.
	DefaultNamespace = "default"

	// maxBackoffDelay caps the inter-attempt probe delay regardless of the
	// configured backoff base.
	maxBackoffDelay = 2 * time.Second

	// Built-in endpoint used by mock mode when no fallback is configured.
	defaultMockHost = "127.0.0.1"
	defaultMockPort = 8000
)
