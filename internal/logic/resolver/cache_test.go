package resolver_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

// testNotFoundError implements the resolver's private notFound interface
// the same way the k8s adapter errors do.
type testNotFoundError struct{}

func (testNotFoundError) Error() string { return "not found" }
func (testNotFoundError) IsNotFound()   {}

// fakeDirectory counts lookups and serves a configurable response.
type fakeDirectory struct {
	mu        sync.Mutex
	calls     atomic.Int64
	delay     time.Duration
	endpoints *resolver.Endpoints
	err       error
}

func (d *fakeDirectory) LookupEndpointsQuery(
	_ context.Context,
	_,
	_,
	_ string,
) (*resolver.Endpoints, error) {
	d.calls.Add(1)

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}

	return d.endpoints, nil
}

func (d *fakeDirectory) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.err = err
}

func twoPodEndpoints() *resolver.Endpoints {
	return &resolver.Endpoints{
		Port: 8080,
		Pods: []resolver.Pod{
			{IP: "10.0.0.1", Name: "web-1"},
			{IP: "10.0.0.2", Name: "web-2"},
		},
	}
}

func TestCache_GetOrRefresh(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	key := resolver.ServiceKey{Namespace: "default", Service: "web"}

	t.Run("valid entry served without directory call", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{endpoints: twoPodEndpoints()}
		cache := resolver.NewCache(logger, dir, true)

		first, err := cache.GetOrRefresh(t.Context(), key, time.Minute, "app=web")
		require.NoError(t, err)
		require.Len(t, first.Endpoints.Pods, 2)

		second, err := cache.GetOrRefresh(t.Context(), key, time.Minute, "app=web")
		require.NoError(t, err)
		require.Same(t, first, second)
		require.Equal(t, int64(1), dir.calls.Load())
	})

	t.Run("expired entry replaced wholesale", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{endpoints: twoPodEndpoints()}
		cache := resolver.NewCache(logger, dir, true)

		first, err := cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		second, err := cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.NoError(t, err)
		require.NotSame(t, first, second)
		require.Equal(t, int64(2), dir.calls.Load())
	})

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{endpoints: twoPodEndpoints(), delay: 50 * time.Millisecond}
		cache := resolver.NewCache(logger, dir, true)

		const callers = 8

		var wg sync.WaitGroup

		entries := make([]*resolver.Entry, callers)

		for i := range callers {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				entry, err := cache.GetOrRefresh(context.Background(), key, time.Minute, "app=web")
				if err != nil {
					t.Error(err)

					return
				}

				entries[i] = entry
			}(i)
		}

		wg.Wait()

		require.Equal(t, int64(1), dir.calls.Load())

		for i := 1; i < callers; i++ {
			require.Same(t, entries[0], entries[i])
		}
	})

	t.Run("not found surfaces and creates no entry", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{err: testNotFoundError{}}
		cache := resolver.NewCache(logger, dir, true)

		_, err := cache.GetOrRefresh(t.Context(), key, time.Minute, "app=web")
		require.ErrorIs(t, err, resolver.ErrServiceNotFound)
		require.Equal(t, 0, cache.Len())
	})

	t.Run("unavailable without entry surfaces", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{err: errors.New("connection refused")}
		cache := resolver.NewCache(logger, dir, true)

		_, err := cache.GetOrRefresh(t.Context(), key, time.Minute, "app=web")
		require.ErrorIs(t, err, resolver.ErrDirectoryUnavailable)
	})

	t.Run("stale entry served while unavailable", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{endpoints: twoPodEndpoints()}
		cache := resolver.NewCache(logger, dir, true)

		first, err := cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.NoError(t, err)

		dir.setErr(errors.New("connection refused"))
		time.Sleep(20 * time.Millisecond)

		stale, err := cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.NoError(t, err)
		require.Same(t, first, stale)
	})

	t.Run("stale serving disabled surfaces error", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{endpoints: twoPodEndpoints()}
		cache := resolver.NewCache(logger, dir, false)

		_, err := cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.NoError(t, err)

		dir.setErr(errors.New("connection refused"))
		time.Sleep(20 * time.Millisecond)

		_, err = cache.GetOrRefresh(t.Context(), key, 10*time.Millisecond, "app=web")
		require.ErrorIs(t, err, resolver.ErrDirectoryUnavailable)
	})
}

func TestCache_Sweep(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	dir := &fakeDirectory{endpoints: twoPodEndpoints()}
	cache := resolver.NewCache(logger, dir, true)

	shortKey := resolver.ServiceKey{Namespace: "default", Service: "short"}
	longKey := resolver.ServiceKey{Namespace: "default", Service: "long"}

	_, err := cache.GetOrRefresh(t.Context(), shortKey, 10*time.Millisecond, "app=short")
	require.NoError(t, err)

	_, err = cache.GetOrRefresh(t.Context(), longKey, time.Minute, "app=long")
	require.NoError(t, err)

	require.Equal(t, 2, cache.Len())

	time.Sleep(20 * time.Millisecond)

	require.Equal(t, 1, cache.Sweep())
	require.Equal(t, 1, cache.Len())
}
