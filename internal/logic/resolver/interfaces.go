package resolver

import "context"

// Directory is the port interface for cluster service discovery.
// Implementations are provided by adapters in the outbound layer.
type Directory interface {
	LookupEndpointsQuery(
		ctx context.Context,
		namespace,
		service,
		labelSelector string,
	) (*Endpoints, error)
}

// Prober checks TCP reachability of a single candidate.
// Network failure is reported in the HealthResult, never as an error;
// the error return is reserved for invalid probe configuration.
type Prober interface {
	Probe(ctx context.Context, pod Pod, port int32) (HealthResult, error)
}

// notFound is a private interface for checking "service not found" errors
// without importing the adapter package.
type notFound interface {
	IsNotFound()
}
