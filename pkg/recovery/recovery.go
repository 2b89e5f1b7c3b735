package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vigil/pkg/health"
	"vigil/pkg/log"
	"vigil/pkg/runtime"
	"vigil/pkg/types"
)

// Outcome classifies how a recovery attempt ended.
type Outcome string

const (
	// OutcomeSucceeded means a probe confirmed full health in budget.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeTimedOut means the readiness budget ran out before the
	// service came back healthy.
	OutcomeTimedOut Outcome = "timed_out"

	// OutcomeRuntimeError means a runtime call failed or the context
	// was cancelled mid-sequence.
	OutcomeRuntimeError Outcome = "runtime_error"
)

// Attempt is the record of one recovery run. Attempts are ephemeral:
// logged and counted in metrics, never persisted across restarts.
type Attempt struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   Outcome

	// Polls is how many readiness probes were issued after recreate.
	Polls int

	// Last is the final readiness probe. Zero-valued when the sequence
	// failed before polling started.
	Last health.Signal

	// Err is set for timed_out and runtime_error outcomes.
	Err error
}

// Controller drives the bounded recovery sequence. The supervision loop
// runs recoveries one at a time; Controller itself holds no state
// between attempts.
type Controller struct {
	rt     runtime.Runtime
	prober *health.Prober
	logger zerolog.Logger
}

// NewController creates a recovery controller.
func NewController(rt runtime.Runtime, prober *health.Prober) *Controller {
	return &Controller{
		rt:     rt,
		prober: prober,
		logger: log.WithComponent("recovery"),
	}
}

// Recover runs one full recovery: stop, remove, recreate, then poll for
// readiness. Every step is idempotent, so the sequence is safe to run
// from any starting state, including one where the container is already
// gone.
func (c *Controller) Recover(ctx context.Context, spec types.ServiceSpec) Attempt {
	attempt := Attempt{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := c.logger.With().
		Str("service", spec.Name).
		Str("attempt", attempt.ID).
		Logger()

	logger.Info().Msg("Starting recovery")

	attempt.Outcome, attempt.Polls, attempt.Last, attempt.Err = c.sequence(ctx, spec, logger)
	attempt.Duration = time.Since(attempt.StartedAt)

	if attempt.Outcome == OutcomeSucceeded {
		logger.Info().
			Int("polls", attempt.Polls).
			Dur("duration", attempt.Duration).
			Msg("Recovery succeeded")
	} else {
		logger.Error().
			Err(attempt.Err).
			Str("outcome", string(attempt.Outcome)).
			Int("polls", attempt.Polls).
			Dur("duration", attempt.Duration).
			Msg("Recovery failed")
	}
	return attempt
}

func (c *Controller) sequence(ctx context.Context, spec types.ServiceSpec, logger zerolog.Logger) (Outcome, int, health.Signal, error) {
	var none health.Signal

	if err := ctx.Err(); err != nil {
		return OutcomeRuntimeError, 0, none, err
	}
	if err := c.rt.Stop(ctx, spec.Name, spec.StopTimeout.Std()); err != nil {
		return OutcomeRuntimeError, 0, none, fmt.Errorf("stop: %w", err)
	}
	logger.Debug().Msg("Container stopped")

	if err := ctx.Err(); err != nil {
		return OutcomeRuntimeError, 0, none, err
	}
	if err := c.rt.Remove(ctx, spec.Name); err != nil {
		return OutcomeRuntimeError, 0, none, fmt.Errorf("remove: %w", err)
	}
	logger.Debug().Msg("Container removed")

	if err := ctx.Err(); err != nil {
		return OutcomeRuntimeError, 0, none, err
	}
	if err := c.rt.Start(ctx, spec); err != nil {
		return OutcomeRuntimeError, 0, none, fmt.Errorf("recreate: %w", err)
	}
	logger.Debug().Msg("Container recreated")

	polls, sig, err := c.prober.Wait(ctx, spec)
	if err != nil {
		return OutcomeRuntimeError, polls, sig, fmt.Errorf("readiness wait: %w", err)
	}
	if !sig.Healthy() {
		return OutcomeTimedOut, polls, sig, fmt.Errorf(
			"service not healthy after %d probes: container %s, port %s, runtime %s",
			polls, sig.ContainerDetail, sig.PortDetail, sig.RuntimeDetail)
	}
	return OutcomeSucceeded, polls, sig, nil
}
