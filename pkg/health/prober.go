package health

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vigil/pkg/log"
	"vigil/pkg/runtime"
	"vigil/pkg/types"
)

// Prober evaluates the three health signals for the watched service.
type Prober struct {
	rt     runtime.Runtime
	logger zerolog.Logger
}

// NewProber creates a prober backed by the given runtime.
func NewProber(rt runtime.Runtime) *Prober {
	return &Prober{
		rt:     rt,
		logger: log.WithComponent("health"),
	}
}

// Probe runs one timeout-bounded evaluation of all three signals.
// Failures of the checks themselves become negative signals; Probe
// never returns an error. Each sub-check is bounded by the spec's
// ProbeTimeout, so the total blocking time is bounded as well.
func (p *Prober) Probe(ctx context.Context, spec types.ServiceSpec) Signal {
	start := time.Now()
	sig := Signal{
		CheckedAt:     start,
		RuntimeHealth: types.HealthStateUnknown,
	}

	// One inspect answers both the running axis and the runtime-health
	// axis. Inspecting twice could observe two different containers
	// mid-recovery.
	inspectCtx, cancel := context.WithTimeout(ctx, spec.ProbeTimeout.Std())
	state, err := p.rt.Inspect(inspectCtx, spec.Name)
	cancel()

	switch {
	case err != nil:
		sig.ContainerDetail = fmt.Sprintf("inspect failed: %v", err)
		sig.RuntimeDetail = "inspect failed"
		p.logger.Error().Err(err).Str("service", spec.Name).Msg("Container runtime unreachable")
	case !state.Exists:
		sig.ContainerDetail = "container not found"
		sig.RuntimeDetail = "container not found"
	case !state.Running:
		sig.ContainerDetail = fmt.Sprintf("container %s (exit code %d)", state.Status, state.ExitCode)
		sig.RuntimeDetail = "container not running"
	default:
		sig.ContainerRunning = true
		sig.ContainerDetail = "running"
		sig.RuntimeHealth = state.Health
		sig.RuntimeDetail = string(state.Health)
	}

	sig.PortReachable, sig.PortDetail = NewTCPChecker(spec.Address()).
		WithTimeout(spec.ProbeTimeout.Std()).
		Check(ctx)

	sig.Duration = time.Since(start)

	p.logger.Debug().
		Str("service", spec.Name).
		Bool("running", sig.ContainerRunning).
		Bool("reachable", sig.PortReachable).
		Str("runtime_health", string(sig.RuntimeHealth)).
		Str("composite", string(sig.Composite())).
		Dur("duration", sig.Duration).
		Msg("Probe complete")

	return sig
}

// Wait polls until the service is fully healthy or the spec's attempt
// budget is exhausted. It returns the number of probes issued and the
// final signal. The error is non-nil only when ctx ended the wait early.
func (p *Prober) Wait(ctx context.Context, spec types.ServiceSpec) (int, Signal, error) {
	ticker := time.NewTicker(spec.PollInterval.Std())
	defer ticker.Stop()

	var last Signal
	for attempt := 1; ; attempt++ {
		last = p.Probe(ctx, spec)
		if last.Healthy() {
			return attempt, last, nil
		}
		if attempt >= spec.MaxAttempts {
			return attempt, last, nil
		}

		select {
		case <-ctx.Done():
			return attempt, last, ctx.Err()
		case <-ticker.C:
		}
	}
}
