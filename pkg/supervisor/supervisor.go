package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vigil/pkg/health"
	"vigil/pkg/log"
	"vigil/pkg/metrics"
	"vigil/pkg/recovery"
	"vigil/pkg/types"
)

// State identifies the loop's current phase.
type State string

const (
	StateChecking   State = "checking"
	StateRecovering State = "recovering"
	StateSleeping   State = "sleeping"
	StateStopped    State = "stopped"
)

// Options tunes loop behavior beyond what the service spec carries.
// The zero value preserves the default behavior: retry every
// CheckInterval forever, no alarm.
type Options struct {
	// BackoffEnabled doubles the sleep interval after each consecutive
	// failed recovery, capped at BackoffMax. A healthy service resets
	// the interval.
	BackoffEnabled bool
	BackoffMax     time.Duration

	// MaxConsecutiveFailures raises a one-time alarm once this many
	// recoveries have failed in a row. Zero disables the alarm.
	MaxConsecutiveFailures int
}

// Loop supervises a single service: probe, recover when not healthy,
// sleep, repeat. All probing and recovery runs on the goroutine that
// calls Run, so there is never more than one runtime operation in
// flight for the service.
type Loop struct {
	prober     *health.Prober
	controller *recovery.Controller
	spec       types.ServiceSpec
	opts       Options
	logger     zerolog.Logger

	mu          sync.RWMutex
	state       State
	consecutive int
	alarmRaised bool
}

// NewLoop creates a supervision loop for one service.
func NewLoop(prober *health.Prober, controller *recovery.Controller, spec types.ServiceSpec, opts Options) *Loop {
	return &Loop{
		prober:     prober,
		controller: controller,
		spec:       spec,
		opts:       opts,
		logger:     log.WithComponent("supervisor"),
		state:      StateChecking,
	}
}

// State returns the loop's current phase.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// ConsecutiveFailures returns the number of failed recoveries since
// the service was last healthy.
func (l *Loop) ConsecutiveFailures() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.consecutive
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Run drives the loop until ctx is cancelled. Cycle failures are
// logged and absorbed; Run returns nil on clean cancellation.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().
		Str("service", l.spec.Name).
		Str("interval", l.spec.CheckInterval.Std().String()).
		Msg("Supervision started")

	for {
		if ctx.Err() != nil {
			return l.stop()
		}

		l.cycle(ctx)

		if !l.sleep(ctx, l.interval()) {
			return l.stop()
		}
	}
}

func (l *Loop) stop() error {
	l.setState(StateStopped)
	l.logger.Info().Str("service", l.spec.Name).Msg("Supervision stopped")
	return nil
}

// cycle runs one checking phase and, when the service is not fully
// healthy, one recovery.
func (l *Loop) cycle(ctx context.Context) {
	l.setState(StateChecking)

	timer := metrics.NewTimer()
	sig := l.prober.Probe(ctx, l.spec)
	timer.ObserveDuration(metrics.ProbeDuration)

	comp := sig.Composite()
	metrics.ProbesTotal.WithLabelValues(string(comp)).Inc()
	metrics.SetComposite(string(comp))
	metrics.ObserveStatus(string(comp), sig.Details())

	if comp == health.CompositeHealthy {
		l.logger.Debug().Str("service", l.spec.Name).Msg("Service healthy")
		l.resetFailures()
		return
	}
	if ctx.Err() != nil {
		// Cancelled mid-probe; don't start a recovery that would be
		// aborted on its first step.
		return
	}

	l.logger.Warn().
		Str("service", l.spec.Name).
		Str("status", string(comp)).
		Str("container", sig.ContainerDetail).
		Str("port", sig.PortDetail).
		Str("runtime", sig.RuntimeDetail).
		Msg("Service needs recovery")

	l.recover(ctx)
}

func (l *Loop) recover(ctx context.Context) {
	l.setState(StateRecovering)

	timer := metrics.NewTimer()
	attempt := l.controller.Recover(ctx, l.spec)
	timer.ObserveDuration(metrics.RecoveryDuration)

	metrics.RecoveriesTotal.WithLabelValues(string(attempt.Outcome)).Inc()
	metrics.LastRecoveryTimestamp.Set(float64(time.Now().Unix()))

	if attempt.Outcome == recovery.OutcomeSucceeded {
		l.resetFailures()
		metrics.SetComposite(string(health.CompositeHealthy))
		metrics.ObserveStatus(string(health.CompositeHealthy), attempt.Last.Details())
		return
	}

	l.mu.Lock()
	l.consecutive++
	consecutive := l.consecutive
	raiseAlarm := l.opts.MaxConsecutiveFailures > 0 &&
		consecutive >= l.opts.MaxConsecutiveFailures &&
		!l.alarmRaised
	if raiseAlarm {
		l.alarmRaised = true
	}
	l.mu.Unlock()

	metrics.ConsecutiveFailures.Set(float64(consecutive))

	log.Critical().
		Str("service", l.spec.Name).
		Str("attempt", attempt.ID).
		Str("outcome", string(attempt.Outcome)).
		Int("consecutive_failures", consecutive).
		Err(attempt.Err).
		Msg("Recovery failed, service remains unavailable")

	if raiseAlarm {
		log.Critical().
			Str("service", l.spec.Name).
			Int("consecutive_failures", consecutive).
			Int("threshold", l.opts.MaxConsecutiveFailures).
			Msg("Recovery failure threshold reached, operator attention required")
	}
}

func (l *Loop) resetFailures() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.consecutive > 0 {
		l.logger.Info().
			Str("service", l.spec.Name).
			Int("after_failures", l.consecutive).
			Msg("Service recovered")
	}
	l.consecutive = 0
	l.alarmRaised = false
	metrics.ConsecutiveFailures.Set(0)
}

// interval returns the next sleep duration, applying backoff when
// enabled.
func (l *Loop) interval() time.Duration {
	base := l.spec.CheckInterval.Std()

	l.mu.RLock()
	consecutive := l.consecutive
	l.mu.RUnlock()

	if !l.opts.BackoffEnabled || consecutive == 0 {
		return base
	}

	d := base
	// Cap the doubling count so the shift cannot overflow.
	for i := 0; i < consecutive && i < 16; i++ {
		d *= 2
		if l.opts.BackoffMax > 0 && d >= l.opts.BackoffMax {
			return l.opts.BackoffMax
		}
	}
	return d
}

// sleep waits for d or until ctx is cancelled. It reports false when
// cancelled.
func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	l.setState(StateSleeping)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
