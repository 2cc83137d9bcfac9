package httpserver

import (
	"context"

	"github.com/skillcoder/kube-service-resolver/internal/infra/pinger"
	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

// resolverService is the part of the resolver the HTTP API needs.
type resolverService interface {
	Resolve(
		ctx context.Context,
		service,
		namespace string,
		failover bool,
		overrides ...resolver.ResolveOption,
	) (*resolver.Handle, error)
	Status(service, namespace string) (resolver.Status, bool)
}

// healther exposes component liveness collected by the pinger service.
type healther interface {
	Healthy() bool
	Results() map[string]pinger.Result
}
