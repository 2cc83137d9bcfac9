package pinger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skillcoder/kube-service-resolver/internal/infra/shutdown"
)

const defaultPingTimeout = 1 * time.Second

// Result is the outcome of the most recent ping of one component.
type Result struct {
	LastRun time.Time
	Latency time.Duration
	Err     error
}

// Service runs registered component pings at a fixed interval and keeps
// the most recent result per component. Healthz reads the results without
// triggering new pings.
type Service struct {
	logger   *slog.Logger
	interval time.Duration

	mu      sync.RWMutex
	pingers map[string]Pinger
	results map[string]Result

	ready      chan struct{}
	doneCh     chan struct{}
	inShutdown atomic.Bool
}

// New creates a pinger service with the specified interval.
func New(logger *slog.Logger, interval time.Duration) *Service {
	return &Service{
		logger:   logger,
		interval: interval,
		pingers:  make(map[string]Pinger),
		results:  make(map[string]Result),
		ready:    make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

var _ shutdown.Shutdowner = (*Service)(nil)

// Name returns the name of the pinger service component.
func (s *Service) Name() string {
	return "pinger-service"
}

// Register registers a pinger with the given name.
func (s *Service) Register(p Pinger) error {
	if p == nil {
		return fmt.Errorf("register pinger: pinger cannot be nil")
	}

	name := p.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pingers[name]; exists {
		return fmt.Errorf("register pinger %s: %w", name, ErrPingerAlreadyRegistered)
	}

	s.pingers[name] = p
	s.results[name] = Result{Err: ErrNeverPinged}

	s.logger.Info("pinger registered", "name", name)

	return nil
}

// Start starts the ping loop in a goroutine.
func (s *Service) Start(ctx context.Context) error {
	if s.inShutdown.Load() {
		s.logger.InfoContext(ctx, "pinger service is shutting down, skipping start")

		return nil
	}

	go s.run(ctx)

	return nil
}

// Ready returns a channel that is closed after the first ping round.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Shutdown gracefully shuts down the pinger service.
func (s *Service) Shutdown(ctx context.Context) error {
	if !s.inShutdown.CompareAndSwap(false, true) {
		s.logger.ErrorContext(ctx, "pinger service is already shutting down, skipping shutdown")

		return nil
	}

	s.logger.InfoContext(ctx, "shutting down pinger service")

	select {
	case <-ctx.Done():
		return fmt.Errorf("shutdown context done before pinger loop exited: %w", ctx.Err())
	case <-s.doneCh:
	}

	return nil
}

// Healthy reports whether every registered component's last ping succeeded.
func (s *Service) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, result := range s.results {
		if result.Err != nil {
			return false
		}
	}

	return true
}

// Results returns a copy of the latest results keyed by component name.
func (s *Service) Results() map[string]Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Result, len(s.results))
	for name, result := range s.results {
		out[name] = result
	}

	return out
}

func (s *Service) run(ctx context.Context) {
	defer close(s.doneCh)

	logger := s.logger.With("component", "pinger-run")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.pingAll(ctx, logger)
	close(s.ready)

	for {
		if s.inShutdown.Load() {
			logger.InfoContext(ctx, "terminating pinger loop")

			return
		}

		select {
		case <-ticker.C:
			s.pingAll(ctx, logger)
		case <-ctx.Done():
			logger.InfoContext(ctx, "terminating pinger loop")

			return
		}
	}
}

func (s *Service) pingAll(ctx context.Context, logger *slog.Logger) {
	s.mu.RLock()
	pingers := make(map[string]Pinger, len(s.pingers))
	for name, p := range s.pingers {
		pingers[name] = p
	}
	s.mu.RUnlock()

	for name, p := range pingers {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)

		start := time.Now()
		err := p.Ping(pingCtx)
		latency := time.Since(start)

		cancel()

		s.mu.Lock()
		s.results[name] = Result{LastRun: start, Latency: latency, Err: err}
		s.mu.Unlock()

		if err != nil {
			logger.WarnContext(ctx, "pinger error", "name", name, "latency", latency, "reason", err)
		} else {
			logger.DebugContext(ctx, "pinger success", "name", name, "latency", latency)
		}
	}
}
