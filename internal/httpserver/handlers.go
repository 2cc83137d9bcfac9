package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillcoder/kube-service-resolver/internal/logic/resolver"
)

type resolveResponse struct {
	Host          string          `json:"host"`
	Port          int32           `json:"port"`
	Addr          string          `json:"addr"`
	ActivePod     string          `json:"active_pod"`
	AvailablePods []string        `json:"available_pods"`
	Status        resolver.Status `json:"status"`
}

type componentStatus struct {
	LastRun   time.Time `json:"lastRun"`
	LatencyMS float64   `json:"latencyMs"`
	Error     string    `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.health.Healthy() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleComponentStatus(w http.ResponseWriter, _ *http.Request) {
	results := s.health.Results()

	response := make(map[string]componentStatus, len(results))

	for name, result := range results {
		cs := componentStatus{
			LastRun:   result.LastRun,
			LatencyMS: float64(result.Latency) / float64(time.Millisecond),
		}
		if result.Err != nil {
			cs.Error = result.Err.Error()
		}

		response[name] = cs
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")
	service := chi.URLParam(r, "service")

	failover := true
	if v := r.URL.Query().Get("failover"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid failover value")

			return
		}

		failover = parsed
	}

	overrides, err := parseOverrides(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	handle, err := s.resolver.Resolve(ctx, service, namespace, failover, overrides...)
	if err != nil {
		s.logger.WarnContext(ctx, "resolution failed",
			"namespace", namespace,
			"service", service,
			"reason", err,
		)
		s.writeError(w, statusForError(err), err.Error())

		return
	}

	s.writeJSON(w, http.StatusOK, resolveResponse{
		Host:          handle.Host,
		Port:          handle.Port,
		Addr:          handle.Addr(),
		ActivePod:     handle.ActivePod,
		AvailablePods: handle.AvailablePods,
		Status:        handle.Status(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	service := chi.URLParam(r, "service")

	status, exists := s.resolver.Status(service, namespace)
	if !exists {
		s.writeError(w, http.StatusNotFound, "service was never resolved")

		return
	}

	s.writeJSON(w, http.StatusOK, status)
}

// parseOverrides maps optional query parameters onto per-call resolver options.
func parseOverrides(r *http.Request) ([]resolver.ResolveOption, error) {
	var overrides []resolver.ResolveOption

	query := r.URL.Query()

	if v := query.Get("ttl"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("invalid ttl value")
		}

		overrides = append(overrides, resolver.WithCacheTTL(ttl))
	}

	if v := query.Get("timeout"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("invalid timeout value")
		}

		overrides = append(overrides, resolver.WithHealthTimeout(timeout))
	}

	if v := query.Get("retries"); v != "" {
		retries, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid retries value")
		}

		overrides = append(overrides, resolver.WithRetries(retries))
	}

	if v := query.Get("backoff"); v != "" {
		backoff, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("invalid backoff value")
		}

		overrides = append(overrides, resolver.WithBackoffBase(backoff))
	}

	if v := query.Get("selector"); v != "" {
		overrides = append(overrides, resolver.WithLabelSelector(v))
	}

	return overrides, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, resolver.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrProbeConfig):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrNoHealthyEndpoints),
		errors.Is(err, resolver.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
