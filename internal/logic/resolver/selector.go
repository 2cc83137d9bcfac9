package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skillcoder/kube-service-resolver/internal/infra/metrics"
)

// state is the per-key selector state shared across resolutions.
// active is a pod identifier, FallbackIdentifier, or empty before the
// first successful resolution.
type state struct {
	mu            sync.Mutex
	active        string
	failoverCount uint64
	lastLatency   time.Duration
	lastPods      int
}

// Selector picks the first healthy candidate in directory list order,
// preferring the previously active one, and escalates to the static
// fallback endpoint when nothing is reachable.
type Selector struct {
	logger   *slog.Logger
	fallback *FallbackEndpoint

	mu     sync.Mutex
	states map[ServiceKey]*state
}

// NewSelector creates a failover selector. fallback may be nil when no
// static endpoint is configured.
func NewSelector(logger *slog.Logger, fallback *FallbackEndpoint) *Selector {
	return &Selector{
		logger:   logger,
		fallback: fallback,
		states:   make(map[ServiceKey]*state),
	}
}

// HasFallback reports whether a static fallback endpoint is configured.
func (s *Selector) HasFallback() bool {
	return s.fallback != nil
}

// Select probes candidates for key and returns a handle for the first
// reachable one. State transitions for a key are serialized; concurrent
// resolutions cannot double-count a failover.
func (s *Selector) Select(
	ctx context.Context,
	key ServiceKey,
	endpoints *Endpoints,
	prober Prober,
	failoverEnabled bool,
) (*Handle, error) {
	st := s.state(key)

	st.mu.Lock()
	defer st.mu.Unlock()

	var winner *HealthResult

	skipped := 0

	for _, pod := range orderCandidates(endpoints.Pods, st.active) {
		result, err := prober.Probe(ctx, pod, endpoints.Port)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", pod.Identifier(), err)
		}

		if result.Reachable {
			winner = &result

			break
		}

		skipped++

		s.logger.WarnContext(ctx, "candidate unreachable",
			"key", key.String(),
			"pod", pod.Identifier(),
			"attempts", result.Attempts,
		)
	}

	if winner == nil {
		if !failoverEnabled {
			return nil, fmt.Errorf("select %s: %w", key, ErrNoHealthyEndpoints)
		}

		return s.fallbackLocked(ctx, key, st, endpoints.Pods)
	}

	previous := st.active
	identifier := winner.Pod.Identifier()

	// A kept healthy active candidate probes first and skips nothing, so
	// the count never moves on the idempotent path. Without a previous
	// candidate, every unreachable one skipped on the way counts; with
	// one, the switch counts once.
	switch {
	case previous == "" || previous == FallbackIdentifier:
		s.recordFailovers(key, st, skipped)
	case previous != identifier:
		s.recordFailovers(key, st, 1)
	}

	if previous != "" && previous != identifier {
		s.logger.WarnContext(ctx, "failing over",
			"key", key.String(),
			"from", previous,
			"to", identifier,
			"failoverCount", st.failoverCount,
		)
	}

	st.active = identifier
	st.lastLatency = winner.Latency
	st.lastPods = len(endpoints.Pods)

	metrics.ObserveProbeLatency(key.Namespace, key.Service, winner.Latency.Seconds())

	return newHandle(winner.Pod.IP, endpoints.Port, identifier, endpoints.Pods, statusLocked(st)), nil
}

// SelectFallback returns a handle for the static fallback endpoint without
// probing. Used when the directory is unavailable or listed no candidates.
// pods carries the last-known candidate list for the handle, may be nil.
func (s *Selector) SelectFallback(ctx context.Context, key ServiceKey, pods []Pod) (*Handle, error) {
	st := s.state(key)

	st.mu.Lock()
	defer st.mu.Unlock()

	return s.fallbackLocked(ctx, key, st, pods)
}

// Status returns the last resolution snapshot for key. The second return
// is false when the key has never been resolved. Performs no I/O.
func (s *Selector) Status(key ServiceKey) (Status, bool) {
	s.mu.Lock()
	st, exists := s.states[key]
	s.mu.Unlock()

	if !exists {
		return Status{}, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	return statusLocked(st), true
}

// Reset drops the selector state for key. The next resolution starts cold.
func (s *Selector) Reset(key ServiceKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, key)
}

func (s *Selector) fallbackLocked(
	ctx context.Context,
	key ServiceKey,
	st *state,
	pods []Pod,
) (*Handle, error) {
	if s.fallback == nil {
		return nil, fmt.Errorf("select %s: %w", key, ErrNoHealthyEndpoints)
	}

	// Staying on the fallback is not another transition.
	if st.active != FallbackIdentifier {
		st.failoverCount++
		metrics.RecordFallback(key.Namespace, key.Service)
		metrics.RecordFailover(key.Namespace, key.Service)
	}

	st.active = FallbackIdentifier
	st.lastLatency = 0
	st.lastPods = len(pods)

	s.logger.ErrorContext(ctx, "no healthy endpoints, using fallback",
		"key", key.String(),
		"fallback", s.fallback.Addr(),
		"failoverCount", st.failoverCount,
	)

	return newHandle(s.fallback.Host, s.fallback.Port, FallbackIdentifier, pods, statusLocked(st)), nil
}

func (s *Selector) recordFailovers(key ServiceKey, st *state, count int) {
	for i := 0; i < count; i++ {
		st.failoverCount++
		metrics.RecordFailover(key.Namespace, key.Service)
	}
}

func (s *Selector) state(key ServiceKey) *state {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.states[key]
	if !exists {
		st = &state{}
		s.states[key] = st
	}

	return st
}

func statusLocked(st *state) Status {
	return Status{
		LatencyMS:     roundMillis(st.lastLatency),
		Pods:          st.lastPods,
		FailoverCount: st.failoverCount,
		ActivePod:     st.active,
	}
}

// orderCandidates returns pods in directory list order with the active
// candidate, when still present, moved to the front.
func orderCandidates(pods []Pod, active string) []Pod {
	if active == "" || active == FallbackIdentifier {
		return pods
	}

	activeIdx := -1

	for i, pod := range pods {
		if pod.Identifier() == active {
			activeIdx = i

			break
		}
	}

	if activeIdx <= 0 {
		return pods
	}

	ordered := make([]Pod, 0, len(pods))
	ordered = append(ordered, pods[activeIdx])

	for i, pod := range pods {
		if i != activeIdx {
			ordered = append(ordered, pod)
		}
	}

	return ordered
}
