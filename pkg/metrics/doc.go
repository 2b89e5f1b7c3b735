/*
Package metrics provides Prometheus metrics and health endpoints for vigil.

The metrics package defines and registers all vigil metrics using the
Prometheus client library, giving operators visibility into probe outcomes,
recovery behavior, and the current composite status of the watched service.
It also serves the JSON health endpoints that report the supervision loop's
latest verdict.

# Architecture

	┌────────────────── OBSERVABILITY ENDPOINT ──────────────────┐
	│                                                             │
	│   supervision loop ──push──▶ collectors + status tracker    │
	│                                      │                      │
	│        ┌─────────────┬───────────────┼──────────────┐       │
	│        ▼             ▼               ▼              ▼       │
	│    /metrics      /healthz        /readyz        /livez      │
	│    Prometheus    watched         first probe    process     │
	│    exposition    service 200/503 completed      alive       │
	└─────────────────────────────────────────────────────────────┘

The HTTP handlers never probe the container runtime themselves. All
probing happens on the supervision loop's single goroutine; the loop
pushes each verdict here via ObserveStatus and the collectors, and the
handlers serve the stored snapshot. This keeps the endpoint from racing
a recovery in progress.

# Metrics Catalog

vigil_probes_total{status}:
  - Type: Counter
  - Description: Health probes by composite status (healthy/degraded/down)

vigil_probe_duration_seconds:
  - Type: Histogram
  - Description: Wall time of a full three-signal probe

vigil_composite_status:
  - Type: Gauge
  - Description: Current composite status (0 = down, 1 = degraded, 2 = healthy)

vigil_recoveries_total{outcome}:
  - Type: Counter
  - Description: Recovery attempts by outcome (succeeded/timed_out/runtime_error)

vigil_recovery_duration_seconds:
  - Type: Histogram
  - Description: Wall time of a full recovery attempt including readiness wait

vigil_consecutive_recovery_failures:
  - Type: Gauge
  - Description: Failed recoveries since the last success; resets to zero on success

vigil_last_recovery_timestamp_seconds:
  - Type: Gauge
  - Description: Unix timestamp of the most recent recovery attempt

# Health Endpoints

/healthz:
  - JSON composite status of the watched service
  - 200 only while fully healthy, 503 for degraded or down
  - Includes per-signal details (container, port, runtime)

/readyz:
  - 200 once the supervision loop has completed its first probe

/livez:
  - 200 while the vigil process itself is running

# Usage

Recording a recovery:

	timer := metrics.NewTimer()
	attempt := ctrl.Recover(ctx, spec)
	timer.ObserveDuration(metrics.RecoveryDuration)
	metrics.RecoveriesTotal.WithLabelValues(string(attempt.Outcome)).Inc()

Serving the endpoint:

	go func() {
		if err := metrics.Serve(ctx, ":9090"); err != nil {
			log.Error(fmt.Sprintf("Metrics endpoint failed: %v", err))
		}
	}()

# Integration Points

This package integrates with:

  - pkg/supervisor: Pushes probe and recovery observations each cycle
  - cmd/vigil: Starts Serve when a metrics address is configured
  - Prometheus: Scrapes the /metrics endpoint
*/
package metrics
