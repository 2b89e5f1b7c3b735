/*
Package supervisor provides the supervision loop that keeps one service alive.

The loop continuously probes the watched service's three health signals and
triggers a bounded recovery whenever the composite verdict is anything other
than fully healthy. It runs in the foreground of the `vigil monitor` process
and is the only place probes and recoveries are initiated, so the container
runtime never sees two vigil operations for the service at once.

# State Machine

	          ┌──────────────────────────────────────────┐
	          │                                          │
	          ▼                                          │
	     ┌──────────┐  healthy   ┌──────────┐  interval  │
	     │ checking │───────────▶│ sleeping │────────────┘
	     └────┬─────┘            └──────────┘
	          │ degraded              ▲
	          │ or down               │ always
	          ▼                       │
	     ┌────────────┐───────────────┘
	     │ recovering │
	     └────────────┘

	     ctx cancelled (any state) ──▶ stopped

Checking issues exactly one probe. A healthy verdict goes straight to
sleeping. Anything else runs exactly one recovery attempt, and the loop
sleeps regardless of the attempt's outcome; a failed recovery is retried
on the next cycle, not immediately.

# Failure Handling

A failed recovery (timed out or runtime error) emits a fatal-severity
log event without terminating the process. The loop never exits because
the service is down; exiting would end supervision exactly when it is
needed most. Run returns only when its context is cancelled, and then
returns nil.

Consecutive failed recoveries are tracked and exported as a gauge. Two
optional behaviors build on the counter, both disabled by default:

  - Backoff: each consecutive failure doubles the sleep interval, capped
    at Options.BackoffMax. Recovery or an independently healthy probe
    resets the interval to CheckInterval.
  - Alarm: once failures reach Options.MaxConsecutiveFailures, one extra
    fatal-severity line flags the service for operator attention. The
    alarm re-arms after the service is healthy again.

# Usage

	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	prober := health.NewProber(rt)
	ctrl := recovery.NewController(rt, prober)

	loop := supervisor.NewLoop(prober, ctrl, cfg.Service, supervisor.Options{})
	return loop.Run(ctx)

The loop is stateless across restarts: it reads nothing from disk and
persists nothing, so killing and restarting the monitor process is
always safe.

# Integration Points

This package integrates with:

  - pkg/health: Probe per checking phase
  - pkg/recovery: Recover per recovering phase
  - pkg/metrics: Probe/recovery counters, gauges, and status snapshot
  - cmd/vigil: `monitor` runs the loop under signal.NotifyContext
*/
package supervisor
