package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedDirectory returns a fixed lookup result and records calls.
type scriptedDirectory struct {
	mu        sync.Mutex
	endpoints *Endpoints
	err       error
	calls     int
	selectors []string
}

func (d *scriptedDirectory) LookupEndpointsQuery(
	_ context.Context,
	_,
	_,
	labelSelector string,
) (*Endpoints, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	d.selectors = append(d.selectors, labelSelector)

	if d.err != nil {
		return nil, d.err
	}

	return d.endpoints, nil
}

func (d *scriptedDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.calls
}

type fakeNotFoundError struct{}

func (fakeNotFoundError) Error() string { return "service not found" }
func (fakeNotFoundError) IsNotFound()   {}

func newTestService(directory Directory, opts Options, prober Prober) *Service {
	svc := New(slog.Default(), directory, opts)
	if prober != nil {
		svc.prober = prober
	}

	return svc
}

func TestService_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("empty service name", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&scriptedDirectory{}, Options{}, &fakeProber{})

		_, err := svc.Resolve(t.Context(), "", "default", true)
		require.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("dead first candidate fails over once", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: testEndpoints()}
		prober := &fakeProber{}
		prober.setDown("10.0.0.1", true)

		svc := newTestService(directory, Options{}, prober)

		handle, err := svc.Resolve(t.Context(), "web", "default", true)
		require.NoError(t, err)
		require.Equal(t, "10.0.0.2", handle.Host)
		require.Equal(t, "10.0.0.2:8080", handle.Addr())
		require.Equal(t, "web-2", handle.ActivePod)

		status := handle.Status()
		require.Equal(t, uint64(1), status.FailoverCount)
		require.Equal(t, 2, status.Pods)
		require.Greater(t, status.LatencyMS, 0.0)
	})

	t.Run("repeat resolution is stable and served from cache", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: testEndpoints()}
		svc := newTestService(directory, Options{CacheTTL: time.Minute}, &fakeProber{})

		for range 3 {
			handle, err := svc.Resolve(t.Context(), "web", "default", true)
			require.NoError(t, err)
			require.Equal(t, "web-1", handle.ActivePod)
			require.Zero(t, handle.Status().FailoverCount)
		}

		require.Equal(t, 1, directory.callCount())
	})

	t.Run("all candidates down resolves to fallback", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: testEndpoints()}
		prober := &fakeProber{}
		prober.setDown("10.0.0.1", true)
		prober.setDown("10.0.0.2", true)

		svc := newTestService(directory, Options{FallbackHost: "127.0.0.1", FallbackPort: 8000}, prober)

		handle, err := svc.Resolve(t.Context(), "web", "default", true)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:8000", handle.Addr())
		require.Equal(t, FallbackIdentifier, handle.ActivePod)
		require.Equal(t, uint64(1), handle.Status().FailoverCount)
		require.Zero(t, handle.Status().LatencyMS)
	})

	t.Run("pods without names are identified by address", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: &Endpoints{
			Port: 8080,
			Pods: []Pod{{IP: "10.0.0.1"}, {IP: "10.0.0.2"}},
		}}

		svc := newTestService(directory, Options{}, &fakeProber{})

		handle, err := svc.Resolve(t.Context(), "web", "default", true)
		require.NoError(t, err)
		require.Equal(t, "10.0.0.1", handle.ActivePod)
		require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, handle.AvailablePods)
	})

	t.Run("directory outage covered by fallback regardless of failover flag", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{err: errors.New("connection refused")}
		svc := newTestService(directory, Options{FallbackHost: "127.0.0.1", FallbackPort: 8000}, &fakeProber{})

		handle, err := svc.Resolve(t.Context(), "web", "default", false)
		require.NoError(t, err)
		require.Equal(t, FallbackIdentifier, handle.ActivePod)
	})

	t.Run("directory outage without fallback surfaces", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{err: errors.New("connection refused")}
		svc := newTestService(directory, Options{}, &fakeProber{})

		_, err := svc.Resolve(t.Context(), "web", "default", true)
		require.ErrorIs(t, err, ErrDirectoryUnavailable)
	})

	t.Run("unknown service surfaces even with fallback", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{err: fakeNotFoundError{}}
		svc := newTestService(directory, Options{FallbackHost: "127.0.0.1", FallbackPort: 8000}, &fakeProber{})

		_, err := svc.Resolve(t.Context(), "web", "default", true)
		require.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("empty candidate list escalates per failover flag", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: &Endpoints{Port: 8080}}
		svc := newTestService(directory, Options{FallbackHost: "127.0.0.1", FallbackPort: 8000}, &fakeProber{})

		handle, err := svc.Resolve(t.Context(), "web", "default", true)
		require.NoError(t, err)
		require.Equal(t, FallbackIdentifier, handle.ActivePod)

		_, err = svc.Resolve(t.Context(), "other", "default", false)
		require.ErrorIs(t, err, ErrNoHealthyEndpoints)
	})

	t.Run("default namespace and label selector", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: testEndpoints()}
		svc := newTestService(directory, Options{}, &fakeProber{})

		_, err := svc.Resolve(t.Context(), "web", "", true)
		require.NoError(t, err)
		require.Equal(t, []string{"app=web"}, directory.selectors)

		_, exists := svc.Status("web", DefaultNamespace)
		require.True(t, exists)
	})

	t.Run("label selector override reaches the directory", func(t *testing.T) {
		t.Parallel()

		directory := &scriptedDirectory{endpoints: testEndpoints()}
		svc := newTestService(directory, Options{}, &fakeProber{})

		_, err := svc.Resolve(t.Context(), "web", "default", true, WithLabelSelector("tier=frontend"))
		require.NoError(t, err)
		require.Equal(t, []string{"tier=frontend"}, directory.selectors)
	})
}

func TestService_Status(t *testing.T) {
	t.Parallel()

	directory := &scriptedDirectory{endpoints: testEndpoints()}
	svc := newTestService(directory, Options{}, &fakeProber{})

	_, exists := svc.Status("web", "default")
	require.False(t, exists)

	handle, err := svc.Resolve(t.Context(), "web", "default", true)
	require.NoError(t, err)

	status, exists := svc.Status("web", "default")
	require.True(t, exists)
	require.Equal(t, handle.Status(), status)

	svc.Reset("web", "default")

	_, exists = svc.Status("web", "default")
	require.False(t, exists)
}

func TestService_MockMode(t *testing.T) {
	t.Parallel()

	t.Run("configured endpoint", func(t *testing.T) {
		t.Parallel()

		svc := New(slog.Default(), nil, Options{
			MockMode:     true,
			FallbackHost: "127.0.0.1",
			FallbackPort: 9000,
		})

		handle, err := svc.Resolve(t.Context(), "anything", "anywhere", true)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:9000", handle.Addr())
	})

	t.Run("built-in default endpoint", func(t *testing.T) {
		t.Parallel()

		svc := New(slog.Default(), nil, Options{MockMode: true})

		handle, err := svc.Resolve(t.Context(), "web", "default", true)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:8000", handle.Addr())
	})
}

func TestDefault(t *testing.T) {
	// Exercises the package-level shared instance, not parallel-safe.
	t.Cleanup(func() { SetDefault(nil) })

	SetDefault(nil)

	_, err := Resolve(t.Context(), "web", "default", true)
	require.ErrorIs(t, err, ErrNotInitialized)

	directory := &scriptedDirectory{endpoints: testEndpoints()}
	svc := newTestService(directory, Options{}, &fakeProber{})
	SetDefault(svc)
	require.Same(t, svc, Default())

	handle, err := Resolve(t.Context(), "web", "default", true)
	require.NoError(t, err)
	require.Equal(t, "web-1", handle.ActivePod)
}
