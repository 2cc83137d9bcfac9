package k8s

import (
	"context"
	"fmt"
	"log/slog"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

// Adapter looks up services, endpoints and pods through the cluster API.
// It also implements the pinger interface for API server reachability.
type Adapter struct {
	logger    *slog.Logger
	clientset kubernetes.Interface
}

// New creates a new K8s directory adapter.
func New(logger *slog.Logger, clientset kubernetes.Interface) *Adapter {
	return &Adapter{
		logger:    logger,
		clientset: clientset,
	}
}

var _ resolver.Directory = (*Adapter)(nil)

// LookupEndpointsQuery resolves the service target port and its candidate
// pod IPs, enriched with pod names when the label selector is permitted.
// Pod-list denial degrades to IP-only candidates, never an error.
func (a *Adapter) LookupEndpointsQuery(
	ctx context.Context,
	namespace,
	service,
	labelSelector string,
) (*resolver.Endpoints, error) {
	svc, err := a.clientset.CoreV1().Services(namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("get service %s/%s: %w", namespace, service, errServiceNotFound)
		}

		return nil, fmt.Errorf("get service %s/%s: %w", namespace, service, err)
	}

	if len(svc.Spec.Ports) == 0 {
		return nil, fmt.Errorf("service %s/%s has no ports defined", namespace, service)
	}

	port := svc.Spec.Ports[0].Port

	ips := a.listEndpointIPs(ctx, namespace, service)

	var names map[string]string

	if len(ips) > 0 {
		names = a.listPodNames(ctx, namespace, labelSelector)
	}

	return &resolver.Endpoints{
		Port: port,
		Pods: toDomainPods(ips, names),
	}, nil
}

func (a *Adapter) listEndpointIPs(ctx context.Context, namespace, service string) []string {
	endpoints, err := a.clientset.CoreV1().Endpoints(namespace).Get(ctx, service, metav1.GetOptions{})
	if err != nil {
		a.logger.WarnContext(ctx, "list endpoints failed",
			"namespace", namespace,
			"service", service,
			"reason", err,
		)

		return nil
	}

	var ips []string

	for i := range endpoints.Subsets {
		for _, addr := range endpoints.Subsets[i].Addresses {
			if addr.IP != "" {
				ips = append(ips, addr.IP)
			}
		}
	}

	return ips
}

// listPodNames maps pod IP to pod name for the label selector. Listing pods
// needs extra RBAC permissions; denial is expected and not an error.
func (a *Adapter) listPodNames(ctx context.Context, namespace, labelSelector string) map[string]string {
	podList, err := a.clientset.CoreV1().Pods(namespace).List(
		ctx,
		metav1.ListOptions{
			LabelSelector: labelSelector,
		},
	)
	if err != nil {
		a.logger.DebugContext(ctx, "list pods failed, candidates stay unnamed",
			"namespace", namespace,
			"labelSelector", labelSelector,
			"reason", err,
		)

		return nil
	}

	names := make(map[string]string, len(podList.Items))

	for i := range podList.Items {
		pod := &podList.Items[i]
		if pod.Status.PodIP != "" && pod.Name != "" {
			names[pod.Status.PodIP] = pod.Name
		}
	}

	return names
}

// Name returns the pinger component name of the directory.
func (a *Adapter) Name() string {
	return "k8s-directory"
}

// Ping checks API server reachability for the liveness loop.
func (a *Adapter) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := a.clientset.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("server version: %w", err)
	}

	return nil
}
