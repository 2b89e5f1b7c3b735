/*
Package recovery implements the bounded recovery sequence that restores
a failed service.

When the supervision loop sees a composite verdict of degraded or down,
it hands control here. The controller replaces the container outright
rather than diagnosing it: stop, remove, recreate from the spec, then
poll until the service proves healthy or the budget runs out.

# Sequence

	Recover(ctx, spec)
	   │
	   ├─ 1. Stop     (graceful, StopTimeout; absent container is a no-op)
	   ├─ 2. Remove   (force; absent container is a no-op)
	   ├─ 3. Start    (create from spec + start; pulls image per policy)
	   └─ 4. Wait     (up to MaxAttempts probes, PollInterval apart)
	         │
	         ├─ probe healthy      → succeeded
	         ├─ budget exhausted   → timed_out
	         └─ runtime/ctx error  → runtime_error

Steps 1 and 2 tolerate an absent container, which makes the whole
sequence idempotent: a recovery interrupted at any point leaves a state
from which the next recovery runs cleanly. Context cancellation is
checked between steps; an in-flight runtime call is only interrupted as
far as the runtime honors its context.

# Outcomes

Every run produces an Attempt with a uuid, timing, the poll count, and
one of three outcomes. Attempts are deliberately ephemeral. They feed
logs and metrics, and nothing else: a watchdog restart forgets all
recovery history, which keeps the supervisor free of state that could
itself go stale or corrupt.

The caller decides what failure means. The supervision loop logs a
critical event and keeps cycling; the start command maps the outcome to
its exit code.

# Usage

	ctrl := recovery.NewController(rt, prober)

	attempt := ctrl.Recover(ctx, spec)
	switch attempt.Outcome {
	case recovery.OutcomeSucceeded:
		// service confirmed healthy again
	case recovery.OutcomeTimedOut, recovery.OutcomeRuntimeError:
		// service still down; attempt.Err says why
	}

# See Also

  - pkg/health for the readiness polling used in step 4
  - pkg/supervisor for when recoveries are triggered
*/
package recovery
