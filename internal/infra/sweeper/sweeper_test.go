package sweeper_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/kube-service-resolver/internal/infra/sweeper"
)

type fakeCache struct{}

func (fakeCache) SweepCache() int { return 0 }

func TestNew(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	t.Run("valid schedule", func(t *testing.T) {
		t.Parallel()

		s, err := sweeper.New(logger, fakeCache{}, "*/5 * * * *")
		require.NoError(t, err)
		require.NotNil(t, s)
		require.Equal(t, "cache-sweeper", s.Name())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		t.Parallel()

		_, err := sweeper.New(logger, fakeCache{}, "not a schedule")
		require.Error(t, err)
	})

	t.Run("six field spec is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := sweeper.New(logger, fakeCache{}, "0 */5 * * * *")
		require.Error(t, err)
	})
}

func TestSweeper_StartShutdown(t *testing.T) {
	t.Parallel()

	logger := slog.Default()

	s, err := sweeper.New(logger, fakeCache{}, "*/5 * * * *")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())

	require.NoError(t, s.Start(ctx))

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	require.NoError(t, s.Shutdown(shutdownCtx))

	// Second shutdown is a no-op.
	require.NoError(t, s.Shutdown(shutdownCtx))
}
