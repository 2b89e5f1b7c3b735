package health

import (
	"time"

	"vigil/pkg/types"
)

// Composite is the overall service verdict derived from the three
// health signals.
type Composite string

const (
	CompositeHealthy  Composite = "healthy"
	CompositeDegraded Composite = "degraded"
	CompositeDown     Composite = "down"
)

// Signal is the outcome of one probe: three independent health signals
// plus per-axis detail strings for operators.
type Signal struct {
	// ContainerRunning reports whether the container exists and its
	// process is running.
	ContainerRunning bool

	// PortReachable reports whether the published TCP port accepted a
	// connection.
	PortReachable bool

	// RuntimeHealth is the runtime's own verdict from the container's
	// HEALTHCHECK. Unknown when the check is absent or unsettled.
	RuntimeHealth types.HealthState

	ContainerDetail string
	PortDetail      string
	RuntimeDetail   string

	CheckedAt time.Time
	Duration  time.Duration
}

// Composite derives the overall verdict:
//   - down when the container is not running
//   - healthy when all three signals are positive
//   - degraded otherwise
//
// Unknown runtime health counts as not positive, so a service without a
// HEALTHCHECK can reach degraded at best.
func (s Signal) Composite() Composite {
	if !s.ContainerRunning {
		return CompositeDown
	}
	if s.PortReachable && s.RuntimeHealth == types.HealthStateHealthy {
		return CompositeHealthy
	}
	return CompositeDegraded
}

// Healthy reports whether the composite verdict is fully healthy.
func (s Signal) Healthy() bool {
	return s.Composite() == CompositeHealthy
}

// Details returns the per-axis detail strings keyed by signal name.
func (s Signal) Details() map[string]string {
	return map[string]string{
		"container": s.ContainerDetail,
		"port":      s.PortDetail,
		"runtime":   s.RuntimeDetail,
	}
}
