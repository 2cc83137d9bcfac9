package k8s

import (
	"fmt"
	"log/slog"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// BuildConfig loads the cluster client configuration: in-cluster first,
// then kubeconfig with optional master/path overrides.
func BuildConfig(logger *slog.Logger, master, kubeconfig string) (*rest.Config, error) {
	cfg, err := rest.InClusterConfig()
	if err == nil {
		logger.Debug("loaded in-cluster kubernetes config")

		return cfg, nil
	}

	cfg, err = clientcmd.BuildConfigFromFlags(master, kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("build kubeconfig: %w", err)
	}

	logger.Debug("loaded local kubeconfig", "master", master, "path", kubeconfig)

	return cfg, nil
}
