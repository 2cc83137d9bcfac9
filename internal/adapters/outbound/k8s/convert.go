package k8s

import (
	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

// toDomainPods builds candidates in endpoint address order. names maps
// pod IP to pod name and may be nil when pod listing was denied.
func toDomainPods(ips []string, names map[string]string) []resolver.Pod {
	pods := make([]resolver.Pod, 0, len(ips))

	for _, ip := range ips {
		pods = append(pods, resolver.Pod{
			IP:   ip,
			Name: names[ip],
		})
	}

	return pods
}
