package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"
)

// ReadinessProbe reports whether one dependency can serve requests
type ReadinessProbe func(ctx context.Context) error

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	startTime time.Time
	logger    *slog.Logger

	mu     sync.RWMutex
	probes map[string]ReadinessProbe
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime, gitCommit string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
		probes:    make(map[string]ReadinessProbe),
	}
}

// RegisterProbe adds a named readiness probe
func (hs *HealthService) RegisterProbe(name string, probe ReadinessProbe) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.probes[name] = probe
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck runs every probe. One failing probe makes the service not ready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	hs.mu.RLock()
	names := make([]string, 0, len(hs.probes))
	for name := range hs.probes {
		names = append(names, name)
	}
	probes := make(map[string]ReadinessProbe, len(hs.probes))
	for k, v := range hs.probes {
		probes[k] = v
	}
	hs.mu.RUnlock()
	sort.Strings(names)

	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(names)),
	}

	for _, name := range names {
		if err := probes[name](ctx); err != nil {
			status.Status = "not_ready"
			status.Services[name] = ServiceHealth{Status: "not_ready", Message: err.Error()}
			hs.logger.WarnContext(ctx, "readiness probe failed",
				slog.String("probe", name),
				slog.String("error", err.Error()))
			continue
		}
		status.Services[name] = ServiceHealth{Status: "ready"}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}
