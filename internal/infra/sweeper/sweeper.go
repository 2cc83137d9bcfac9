package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	cron "github.com/netresearch/go-cron"

	"github.com/skillcoder/kube-service-resolver/internal/infra/shutdown"
)

var _parser = cron.MustNewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// cache is the part of the resolver the sweeper needs.
type cache interface {
	SweepCache() int
}

// Sweeper drops expired discovery cache entries on a cron schedule so the
// cache does not grow unboundedly across many service keys.
type Sweeper struct {
	logger   *slog.Logger
	cache    cache
	spec     string
	schedule cron.Schedule

	doneCh     chan struct{}
	inShutdown atomic.Bool
}

// New creates a sweeper for the given cron spec (UTC, standard 5-field form).
func New(logger *slog.Logger, c cache, spec string) (*Sweeper, error) {
	schedule, err := _parser.Parse("CRON_TZ=UTC " + spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}

	return &Sweeper{
		logger:   logger,
		cache:    c,
		spec:     spec,
		schedule: schedule,
		doneCh:   make(chan struct{}),
	}, nil
}

var _ shutdown.Shutdowner = (*Sweeper)(nil)

// Name returns the name of the sweeper component.
func (s *Sweeper) Name() string {
	return "cache-sweeper"
}

// Start starts the sweep loop in a goroutine.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "sweeper is shutting down, skipping start")

		return nil
	}

	go s.run(ctx)

	return nil
}

// Shutdown waits for the sweep loop to exit.
func (s *Sweeper) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "sweeper is already shutting down, skipping shutdown")

		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before sweep loop exited: %w", ctx.Err())
	case <-s.doneCh:
		return nil
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("component", "cache-sweeper")
	logger.InfoContext(ctx, "sweep loop started", "schedule", s.spec)

	for {
		next := s.schedule.Next(time.Now())

		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			logger.InfoContext(ctx, "terminating sweep loop")

			return
		case <-timer.C:
		}

		if removed := s.cache.SweepCache(); removed > 0 {
			logger.DebugContext(ctx, "expired cache entries removed", "count", removed)
		}
	}
}
