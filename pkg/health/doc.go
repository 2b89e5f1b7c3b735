/*
Package health implements Vigil's health prober: three independent
signals and the composite verdict derived from them.

A watched service is evaluated along three axes, each answerable on its
own: is the container process running, does the published TCP port
accept connections, and what does the runtime's HEALTHCHECK report. The
prober collects all three into a Signal; the truth table in
Signal.Composite turns them into the overall verdict the supervision
loop acts on.

# Architecture

	┌──────────────────── HEALTH PROBER ─────────────────────┐
	│                                                        │
	│   Probe(ctx, spec)                                     │
	│        │                                               │
	│        ├── Inspect ──► container running?              │
	│        │       └────► runtime health (HEALTHCHECK)     │
	│        │                                               │
	│        └── TCP dial ─► port reachable?                 │
	│                                                        │
	│            ┌──────────────────┐                        │
	│            │      Signal      │                        │
	│            │ running/port/rt  │──► Composite()         │
	│            └──────────────────┘    healthy | degraded  │
	│                                    | down              │
	└────────────────────────────────────────────────────────┘

The running axis and the runtime-health axis come from a single Inspect
call. Two separate inspects could observe different containers while a
recovery replaces one.

# Composite Truth Table

	running  port  runtime-health   composite
	false    any   any              down
	true     true  healthy          healthy
	true     true  unhealthy        degraded
	true     true  unknown          degraded
	true     false any              degraded

Unknown runtime health is never a pass: images without a HEALTHCHECK, or
still inside a check's start period, cap the composite at degraded.

# Failure Semantics

Probe never returns an error. A sub-check that fails or times out turns
its axis negative and records the reason in the matching detail string.
Every sub-check is bounded by the spec's ProbeTimeout, so one probe
blocks for at most the sum of the sub-check budgets even against a hung
runtime daemon.

# Readiness Polling

Wait re-probes every PollInterval until the composite is healthy or
MaxAttempts probes have been issued, and reports how many were used.
Recovery uses it after recreating the container; the start command uses
it to decide its exit code.

# Usage

	prober := health.NewProber(rt)

	sig := prober.Probe(ctx, spec)
	switch sig.Composite() {
	case health.CompositeHealthy:
		// all clear
	case health.CompositeDegraded, health.CompositeDown:
		// recovery required
	}

	polls, final, err := prober.Wait(ctx, spec)

# See Also

  - pkg/runtime for the Inspect behind two of the three signals
  - pkg/recovery for what happens when the verdict is not healthy
  - pkg/supervisor for the loop acting on the verdict each cycle
*/
package health
