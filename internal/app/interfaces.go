package app

import (
	"context"

	"github.com/skillcoder/kube-service-resolver/internal/infra/shutdown"
)

// component is a long-running part of the application started by Run and
// stopped in reverse order on shutdown.
type component interface {
	Start(ctx context.Context) error
	shutdown.Shutdowner
}

type signalHandler interface {
	HandleSignals(ctx context.Context, cancel func())
}
