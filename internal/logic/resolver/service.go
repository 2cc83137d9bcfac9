package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skillcoder/kube-service-resolver/internal/infra/metrics"
)

// Service resolves logical service names to live, healthy endpoints.
// It is safe for concurrent use by many request-handling goroutines.
type Service struct {
	logger   *slog.Logger
	opts     Options
	cache    *Cache
	selector *Selector

	// prober, when set, is used for every probe regardless of per-call
	// configuration. Set by mock mode and by tests.
	prober Prober
}

// New creates a resolver backed by the given directory. In mock mode the
// directory and prober are replaced with fixed-response stubs at
// construction time, so the resolution path itself never branches.
func New(logger *slog.Logger, directory Directory, opts Options) *Service {
	opts = opts.withDefaults()

	var prober Prober

	if opts.MockMode {
		host, port := opts.FallbackHost, opts.FallbackPort
		if host == "" || port == 0 {
			host, port = defaultMockHost, defaultMockPort
		}

		directory = &staticDirectory{host: host, port: port}
		prober = staticProber{}

		logger.Info("resolver running in mock mode", "endpoint", fmt.Sprintf("%s:%d", host, port))
	}

	var fallback *FallbackEndpoint

	if opts.FallbackHost != "" && opts.FallbackPort != 0 {
		fallback = &FallbackEndpoint{Host: opts.FallbackHost, Port: opts.FallbackPort}
	}

	return &Service{
		logger:   logger,
		opts:     opts,
		cache:    NewCache(logger, directory, opts.ServeStale),
		selector: NewSelector(logger, fallback),
		prober:   prober,
	}
}

// Resolve returns a handle for the first healthy endpoint of
// namespace/service. The failover flag gates candidate-exhaustion
// fallback; per-call overrides adjust cache and probe settings for this
// call only.
func (r *Service) Resolve(
	ctx context.Context,
	service,
	namespace string,
	failover bool,
	overrides ...ResolveOption,
) (*Handle, error) {
	if service == "" {
		return nil, fmt.Errorf("resolve: %w: empty service name", ErrServiceNotFound)
	}

	if namespace == "" {
		namespace = DefaultNamespace
	}

	opts := r.opts
	for _, override := range overrides {
		override(&opts)
	}

	key := ServiceKey{Namespace: namespace, Service: service}

	labelSelector := opts.LabelSelector
	if labelSelector == "" {
		labelSelector = "app=" + service
	}

	entry, err := r.cache.GetOrRefresh(ctx, key, opts.CacheTTL, labelSelector)
	if err != nil {
		// The static fallback covers directory outages too, not just
		// unreachable candidates. Not-found is always surfaced.
		if errors.Is(err, ErrDirectoryUnavailable) && r.selector.HasFallback() {
			r.logger.ErrorContext(ctx, "directory unavailable, using fallback",
				"key", key.String(),
				"reason", err,
			)
			metrics.RecordResolution(namespace, service, "fallback")

			return r.selector.SelectFallback(ctx, key, nil)
		}

		metrics.RecordResolution(namespace, service, "error")

		return nil, err
	}

	if len(entry.Endpoints.Pods) == 0 {
		if failover && r.selector.HasFallback() {
			metrics.RecordResolution(namespace, service, "fallback")

			return r.selector.SelectFallback(ctx, key, nil)
		}

		metrics.RecordResolution(namespace, service, "error")

		return nil, fmt.Errorf("resolve %s: no endpoints listed: %w", key, ErrNoHealthyEndpoints)
	}

	handle, err := r.selector.Select(ctx, key, &entry.Endpoints, r.proberFor(opts), failover)
	if err != nil {
		metrics.RecordResolution(namespace, service, "error")

		return nil, err
	}

	outcome := "ok"
	if handle.ActivePod == FallbackIdentifier {
		outcome = "fallback"
	}

	metrics.RecordResolution(namespace, service, outcome)

	return handle, nil
}

// Status returns the most recent resolution snapshot for
// namespace/service without touching the network or the cache. The second
// return is false when the key has never been resolved.
func (r *Service) Status(service, namespace string) (Status, bool) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return r.selector.Status(ServiceKey{Namespace: namespace, Service: service})
}

// Reset drops the failover state for namespace/service.
func (r *Service) Reset(service, namespace string) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r.selector.Reset(ServiceKey{Namespace: namespace, Service: service})
}

// SweepCache drops expired cache entries and returns the number removed.
func (r *Service) SweepCache() int {
	return r.cache.Sweep()
}

func (r *Service) proberFor(opts Options) Prober {
	if r.prober != nil {
		return r.prober
	}

	return TCPProber{
		Timeout:     opts.HealthTimeout,
		Retries:     opts.Retries,
		BackoffBase: opts.BackoffBase,
	}
}
