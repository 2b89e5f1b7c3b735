package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the reported health of the watched service
type HealthStatus struct {
	Status    string            `json:"status"` // "healthy", "degraded", "down"
	Service   string            `json:"service,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Signals   map[string]string `json:"signals,omitempty"`
	Message   string            `json:"message,omitempty"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Observed  time.Time         `json:"observed,omitempty"`
}

var (
	healthTracker = &statusTracker{
		startTime: time.Now(),
	}
)

// statusTracker holds the most recent verdict pushed by the
// supervision loop. The HTTP handlers never probe on their own;
// probing stays on the single supervision goroutine.
type statusTracker struct {
	mu        sync.RWMutex
	startTime time.Time
	version   string
	service   string
	status    string
	signals   map[string]string
	observed  time.Time
}

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	healthTracker.mu.Lock()
	defer healthTracker.mu.Unlock()
	healthTracker.version = version
}

// SetService sets the watched service name for health responses
func SetService(name string) {
	healthTracker.mu.Lock()
	defer healthTracker.mu.Unlock()
	healthTracker.service = name
}

// ObserveStatus records the latest composite verdict and its
// per-signal details
func ObserveStatus(status string, signals map[string]string) {
	healthTracker.mu.Lock()
	defer healthTracker.mu.Unlock()

	healthTracker.status = status
	healthTracker.signals = signals
	healthTracker.observed = time.Now()
}

// GetHealth returns the latest observed health of the watched service
func GetHealth() HealthStatus {
	healthTracker.mu.RLock()
	defer healthTracker.mu.RUnlock()

	status := healthTracker.status
	message := ""
	if status == "" {
		status = "down"
		message = "no probe observed yet"
	}

	uptime := time.Since(healthTracker.startTime)

	return HealthStatus{
		Status:    status,
		Service:   healthTracker.service,
		Timestamp: time.Now(),
		Signals:   healthTracker.signals,
		Message:   message,
		Version:   healthTracker.version,
		Uptime:    uptime.String(),
		Observed:  healthTracker.observed,
	}
}

// GetReadiness returns readiness status (ready once the supervision
// loop has completed its first probe)
func GetReadiness() HealthStatus {
	healthTracker.mu.RLock()
	defer healthTracker.mu.RUnlock()

	status := "ready"
	message := ""
	if healthTracker.observed.IsZero() {
		status = "not_ready"
		message = "waiting for first probe"
	}

	uptime := time.Since(healthTracker.startTime)

	return HealthStatus{
		Status:    status,
		Service:   healthTracker.service,
		Timestamp: time.Now(),
		Message:   message,
		Version:   healthTracker.version,
		Uptime:    uptime.String(),
		Observed:  healthTracker.observed,
	}
}

// HealthHandler returns an HTTP handler for the /healthz endpoint.
// It reports 200 only while the watched service is fully healthy.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()

		w.Header().Set("Content-Type", "application/json")

		// Set appropriate status code
		statusCode := http.StatusOK
		if health.Status != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(health)
	}
}

// ReadyHandler returns an HTTP handler for the /readyz endpoint
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()

		w.Header().Set("Content-Type", "application/json")

		// Set appropriate status code
		statusCode := http.StatusOK
		if readiness.Status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(readiness)
	}
}

// LivenessHandler returns a simple liveness check (always returns 200 if process is running)
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": time.Since(healthTracker.startTime).String(),
		})
	}
}
