package resolver

import (
	"math"
	"net"
	"strconv"
	"time"
)

// Handle is the resolved endpoint returned to callers. Fields are
// computed at resolution time and never mutated afterwards.
type Handle struct {
	Host          string
	Port          int32
	ActivePod     string
	AvailablePods []string

	status Status
}

func newHandle(host string, port int32, active string, pods []Pod, status Status) *Handle {
	available := make([]string, 0, len(pods))
	for _, pod := range pods {
		available = append(available, pod.Identifier())
	}

	return &Handle{
		Host:          host,
		Port:          port,
		ActivePod:     active,
		AvailablePods: available,
		status:        status,
	}
}

// Addr returns the ready-to-dial host:port.
func (h *Handle) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(int(h.Port)))
}

// Status returns the snapshot taken when this handle was resolved.
// It performs no I/O and has no side effects.
func (h *Handle) Status() Status {
	return h.status
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)

	return math.Round(ms*100) / 100
}
