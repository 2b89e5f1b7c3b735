package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vigil/pkg/types"
)

// TestCompositeTruthTable covers every combination of the three signals.
func TestCompositeTruthTable(t *testing.T) {
	tests := []struct {
		name      string
		running   bool
		reachable bool
		health    types.HealthState
		want      Composite
	}{
		{"down trumps reachable and healthy", false, true, types.HealthStateHealthy, CompositeDown},
		{"down with unhealthy runtime", false, true, types.HealthStateUnhealthy, CompositeDown},
		{"down with unknown runtime", false, true, types.HealthStateUnknown, CompositeDown},
		{"down unreachable healthy", false, false, types.HealthStateHealthy, CompositeDown},
		{"down unreachable unhealthy", false, false, types.HealthStateUnhealthy, CompositeDown},
		{"down unreachable unknown", false, false, types.HealthStateUnknown, CompositeDown},
		{"all positive", true, true, types.HealthStateHealthy, CompositeHealthy},
		{"runtime unhealthy", true, true, types.HealthStateUnhealthy, CompositeDegraded},
		{"runtime unknown", true, true, types.HealthStateUnknown, CompositeDegraded},
		{"port closed", true, false, types.HealthStateHealthy, CompositeDegraded},
		{"port closed runtime unhealthy", true, false, types.HealthStateUnhealthy, CompositeDegraded},
		{"port closed runtime unknown", true, false, types.HealthStateUnknown, CompositeDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Signal{
				ContainerRunning: tt.running,
				PortReachable:    tt.reachable,
				RuntimeHealth:    tt.health,
			}
			assert.Equal(t, tt.want, sig.Composite())
			assert.Equal(t, tt.want == CompositeHealthy, sig.Healthy())
		})
	}
}
