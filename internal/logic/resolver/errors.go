package resolver

import "errors"

var (
	// ErrDirectoryUnavailable is returned when the cluster directory cannot
	// be reached and no still-usable cache entry exists.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrServiceNotFound is returned when the named service does not exist
	// in the namespace. Never retried automatically.
	ErrServiceNotFound = errors.New("service not found")

	// ErrNoHealthyEndpoints is returned when no candidate is reachable and
	// no fallback endpoint applies.
	ErrNoHealthyEndpoints = errors.New("no healthy endpoints")

	// ErrProbeConfig is returned for invalid timeout/retry/backoff
	// configuration supplied by the caller.
	ErrProbeConfig = errors.New("invalid probe configuration")

	// ErrNotInitialized is returned by the package-level Resolve when no
	// shared resolver has been set.
	ErrNotInitialized = errors.New("resolver not initialized")
)
