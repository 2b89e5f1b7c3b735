// Package runtimetest provides an in-memory runtime.Runtime for tests.
package runtimetest

import (
	"context"
	"sync"
	"time"

	"vigil/pkg/runtime"
	"vigil/pkg/types"
)

var _ runtime.Runtime = (*FakeRuntime)(nil)

type containerState struct {
	spec     types.ServiceSpec
	running  bool
	health   types.HealthState
	inspects int
}

// FakeRuntime is an in-memory implementation of runtime.Runtime. It
// keeps container state across Start/Stop/Remove so recovery sequences
// behave as they would against a real daemon, records every call, and
// exposes per-method error hooks for fault injection.
type FakeRuntime struct {
	CallRecorder
	mu         sync.Mutex
	containers map[string]*containerState

	// HealthAfterStart is the health a started container settles to.
	HealthAfterStart types.HealthState

	// SettleAfter is how many Inspects a started container reports
	// unknown health before settling, simulating a start period.
	SettleAfter int

	// LogLines is canned output for Logs.
	LogLines []string

	StartErr   func(ctx context.Context, spec types.ServiceSpec) error
	StopErr    func(ctx context.Context, name string) error
	RemoveErr  func(ctx context.Context, name string) error
	InspectErr func(ctx context.Context, name string) error
	LogsErr    func(ctx context.Context, name string) error
	PingErr    func(ctx context.Context) error
}

// NewFakeRuntime creates an empty FakeRuntime whose containers come up
// healthy immediately after Start.
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{
		containers:       make(map[string]*containerState),
		HealthAfterStart: types.HealthStateHealthy,
	}
}

// Seed installs a container in a given state without recording a call.
func (f *FakeRuntime) Seed(spec types.ServiceSpec, running bool, health types.HealthState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[spec.Name] = &containerState{
		spec:    spec,
		running: running,
		health:  health,
		// Seeded health is already settled.
		inspects: f.SettleAfter,
	}
}

// SetHealth overrides the current health of an existing container.
func (f *FakeRuntime) SetHealth(name string, health types.HealthState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cs, ok := f.containers[name]; ok {
		cs.health = health
		cs.inspects = f.SettleAfter
	}
}

// SetRunning flips the running flag of an existing container.
func (f *FakeRuntime) SetRunning(name string, running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cs, ok := f.containers[name]; ok {
		cs.running = running
	}
}

// Exists reports whether a container is present.
func (f *FakeRuntime) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.containers[name]
	return ok
}

func (f *FakeRuntime) Start(ctx context.Context, spec types.ServiceSpec) error {
	f.record("Start", spec.Name)
	if f.StartErr != nil {
		if err := f.StartErr(ctx, spec); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[spec.Name] = &containerState{
		spec:    spec,
		running: true,
		health:  f.HealthAfterStart,
	}
	return nil
}

func (f *FakeRuntime) Stop(ctx context.Context, name string, timeout time.Duration) error {
	f.record("Stop", name)
	if f.StopErr != nil {
		if err := f.StopErr(ctx, name); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// Stopping an absent container is a no-op, as with the real runtime.
	if cs, ok := f.containers[name]; ok {
		cs.running = false
	}
	return nil
}

func (f *FakeRuntime) Remove(ctx context.Context, name string) error {
	f.record("Remove", name)
	if f.RemoveErr != nil {
		if err := f.RemoveErr(ctx, name); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.containers, name)
	return nil
}

func (f *FakeRuntime) Inspect(ctx context.Context, name string) (types.ContainerState, error) {
	f.record("Inspect", name)
	if f.InspectErr != nil {
		if err := f.InspectErr(ctx, name); err != nil {
			return types.ContainerState{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	cs, ok := f.containers[name]
	if !ok {
		return types.ContainerState{Health: types.HealthStateUnknown}, nil
	}

	health := cs.health
	if cs.running {
		if cs.inspects < f.SettleAfter {
			cs.inspects++
			health = types.HealthStateUnknown
		}
	} else {
		health = types.HealthStateUnknown
	}

	status := "exited"
	if cs.running {
		status = "running"
	}
	return types.ContainerState{
		Exists:  true,
		Running: cs.running,
		Status:  status,
		Health:  health,
	}, nil
}

func (f *FakeRuntime) Logs(ctx context.Context, name string, tail int) ([]string, error) {
	f.record("Logs", name, tail)
	if f.LogsErr != nil {
		if err := f.LogsErr(ctx, name); err != nil {
			return nil, err
		}
	}
	lines := f.LogLines
	if tail > 0 && len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}
	return lines, nil
}

func (f *FakeRuntime) Ping(ctx context.Context) error {
	f.record("Ping")
	if f.PingErr != nil {
		return f.PingErr(ctx)
	}
	return nil
}

func (f *FakeRuntime) Close() error {
	f.record("Close")
	return nil
}
