package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"k8s.io/client-go/kubernetes"

	"github.com/skillcoder/kube-service-resolver/internal/adapters/outbound/k8s"
	"github.com/skillcoder/kube-service-resolver/internal/config"
	"github.com/skillcoder/kube-service-resolver/internal/httpserver"
	"github.com/skillcoder/kube-service-resolver/internal/infra/pinger"
	"github.com/skillcoder/kube-service-resolver/internal/infra/shutdown"
	"github.com/skillcoder/kube-service-resolver/internal/infra/sweeper"
	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

type App struct {
	logger  *slog.Logger
	signals signalHandler

	components []component
	// shutdowners mirrors components for GracefulShutdown, which takes
	// the narrower slice type.
	shutdowners []shutdown.Shutdowner
}

// New creates a new application instance with all dependencies wired.
func New(logger *slog.Logger, cfg *config.Config, signals <-chan os.Signal) (*App, error) {
	var directory resolver.Directory

	var directoryPinger pinger.Pinger

	// Mock mode never talks to the cluster, so no client is built for it.
	if !cfg.MockMode {
		kubeConfig, err := k8s.BuildConfig(logger, cfg.KubeMaster, cfg.KubeConfig)
		if err != nil {
			return nil, fmt.Errorf("build k8s config: %w", err)
		}

		clientset, err := kubernetes.NewForConfig(kubeConfig)
		if err != nil {
			return nil, fmt.Errorf("create clientset: %w", err)
		}

		adapter := k8s.New(logger, clientset)
		directory = adapter
		directoryPinger = adapter
	}

	resolverService := resolver.New(logger, directory, resolver.Options{
		CacheTTL:      cfg.CacheTTL,
		HealthTimeout: cfg.HealthTimeout,
		Retries:       cfg.Retries,
		BackoffBase:   cfg.BackoffBase,
		LabelSelector: cfg.LabelSelector,
		MockMode:      cfg.MockMode,
		FallbackHost:  cfg.FallbackHost,
		FallbackPort:  cfg.FallbackPort,
		ServeStale:    cfg.ServeStale,
	})

	// Shared instance for callers that cannot receive the service directly.
	resolver.SetDefault(resolverService)

	pingers := pinger.New(logger, cfg.PingerInterval)

	if directoryPinger != nil {
		if err := pingers.Register(directoryPinger); err != nil {
			return nil, fmt.Errorf("register directory pinger: %w", err)
		}
	}

	metricsServer := httpserver.NewMetricsServer(logger, cfg.MetricsPort)
	httpServer := httpserver.New(logger, resolverService, pingers, cfg.HTTPPort)

	for _, p := range []pinger.Pinger{metricsServer, httpServer} {
		if err := pingers.Register(p); err != nil {
			return nil, fmt.Errorf("register pinger: %w", err)
		}
	}

	cacheSweeper, err := sweeper.New(logger, resolverService, cfg.SweepSchedule)
	if err != nil {
		return nil, fmt.Errorf("create cache sweeper: %w", err)
	}

	components := []component{
		metricsServer,
		httpServer,
		cacheSweeper,
		pingers,
	}

	shutdowners := make([]shutdown.Shutdowner, 0, len(components))
	for _, c := range components {
		shutdowners = append(shutdowners, c)
	}

	return &App{
		logger:      logger,
		signals:     shutdown.New(logger, shutdown.NewSignals(signals)),
		components:  components,
		shutdowners: shutdowners,
	}, nil
}

// Run starts all components and blocks until the context is cancelled or a
// termination signal arrives, then shuts everything down in reverse order.
func (a *App) Run(originCtx context.Context) error {
	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	go a.signals.HandleSignals(ctx, cancel)

	for _, c := range a.components {
		if err := c.Start(ctx); err != nil {
			cancel()

			shutdownErr := shutdown.GracefulShutdown(originCtx, a.logger, a.shutdowners)
			if shutdownErr != nil {
				a.logger.ErrorContext(ctx, "shutdown after failed start", "reason", shutdownErr)
			}

			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
	}

	a.logger.InfoContext(ctx, "application started")

	<-ctx.Done()

	return shutdown.GracefulShutdown(originCtx, a.logger, a.shutdowners)
}
