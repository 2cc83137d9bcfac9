package pinger

import "context"

// Pinger defines the interface for component liveness checks.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}
