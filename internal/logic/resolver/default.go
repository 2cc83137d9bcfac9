package resolver

import (
	"context"
	"sync"
)

// Process-wide shared instance for callers that cannot thread a *Service
// through their call chain. The application's composition root should
// construct the resolver with New and register it here once at startup.
var (
	defaultMu      sync.RWMutex
	defaultService *Service
)

// SetDefault registers the shared resolver instance.
func SetDefault(s *Service) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultService = s
}

// Default returns the shared resolver instance, or nil when none was set.
func Default() *Service {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultService
}

// Resolve resolves namespace/service through the shared instance.
func Resolve(
	ctx context.Context,
	service,
	namespace string,
	failover bool,
	overrides ...ResolveOption,
) (*Handle, error) {
	r := Default()
	if r == nil {
		return nil, ErrNotInitialized
	}

	return r.Resolve(ctx, service, namespace, failover, overrides...)
}
