package resolver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

// TCPProber checks candidate reachability with plain TCP connects.
// Each attempt has its own hard timeout; the delay before attempt n (n>=2)
// is BackoffBase doubled per attempt, never applied after the final one.
type TCPProber struct {
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
}

var _ Prober = TCPProber{}

func (p TCPProber) Probe(ctx context.Context, pod Pod, port int32) (HealthResult, error) {
	if p.Timeout <= 0 {
		return HealthResult{}, fmt.Errorf("%w: timeout must be positive, got %s", ErrProbeConfig, p.Timeout)
	}

	if p.Retries < 0 {
		return HealthResult{}, fmt.Errorf("%w: retries must be non-negative, got %d", ErrProbeConfig, p.Retries)
	}

	if p.BackoffBase <= 0 {
		return HealthResult{}, fmt.Errorf("%w: backoff base must be positive, got %s", ErrProbeConfig, p.BackoffBase)
	}

	addr := net.JoinHostPort(pod.IP, strconv.Itoa(int(port)))
	result := HealthResult{Pod: pod}

	err := retry.Do(
		func() error {
			result.Attempts++

			start := time.Now()

			dialer := net.Dialer{Timeout: p.Timeout}

			conn, err := dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return err
			}

			result.Latency = time.Since(start)

			_ = conn.Close()

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.Retries)+1),
		retry.Delay(p.BackoffBase),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(maxBackoffDelay),
		retry.LastErrorOnly(true),
	)

	result.Reachable = err == nil

	return result, nil
}

// staticProber reports every candidate healthy. It backs mock mode, where
// no real network activity is wanted.
type staticProber struct{}

func (staticProber) Probe(_ context.Context, pod Pod, _ int32) (HealthResult, error) {
	return HealthResult{Pod: pod, Reachable: true, Attempts: 1}, nil
}
