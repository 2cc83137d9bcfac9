package resolver

import (
	"net"
	"strconv"
	"time"
)

// ServiceKey identifies one cached service lookup.
type ServiceKey struct {
	Namespace string
	Service   string
}

func (k ServiceKey) String() string {
	return k.Namespace + "/" + k.Service
}

// Pod is one candidate endpoint. Name is empty when pod listing
// was denied or unavailable.
type Pod struct {
	IP   string
	Name string
}

// Identifier returns the pod name when known, otherwise the IP.
func (p Pod) Identifier() string {
	if p.Name != "" {
		return p.Name
	}

	return p.IP
}

// Endpoints is one directory lookup result: the service target port and
// the candidate pods in directory response order.
type Endpoints struct {
	Port int32
	Pods []Pod
}

// HealthResult is the outcome of probing a single candidate.
// Latency is the dial time of the first successful attempt, zero when
// all attempts failed.
type HealthResult struct {
	Pod       Pod
	Reachable bool
	Latency   time.Duration
	Attempts  int
}

// Status is a point-in-time snapshot of the last resolution for a key.
type Status struct {
	LatencyMS     float64 `json:"latency_ms"`
	Pods          int     `json:"pods"`
	FailoverCount uint64  `json:"failover_count"`
	ActivePod     string  `json:"active_pod"`
}

// FallbackEndpoint is the statically configured last-resort address.
type FallbackEndpoint struct {
	Host string
	Port int32
}

func (f FallbackEndpoint) Addr() string {
	return net.JoinHostPort(f.Host, strconv.Itoa(int(f.Port)))
}
