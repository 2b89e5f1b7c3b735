package health

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"vigil/pkg/runtime/runtimetest"
	"vigil/pkg/types"
)

// listen opens a real TCP listener so port probes have something to hit.
func listen(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func proberSpec(port int) types.ServiceSpec {
	s := types.ServiceSpec{
		Name:         "llm-server",
		Image:        "ghcr.io/example/llm-server:latest",
		Port:         port,
		PollInterval: types.Duration(10 * time.Millisecond),
		MaxAttempts:  10,
	}
	s.ApplyDefaults()
	return s
}

func TestProbe_AllSignalsPositive(t *testing.T) {
	spec := proberSpec(listen(t))
	rt := runtimetest.NewFakeRuntime()
	rt.Seed(spec, true, types.HealthStateHealthy)

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeHealthy {
		t.Fatalf("composite = %s, want healthy (signal %+v)", got, sig)
	}
	if sig.ContainerDetail != "running" {
		t.Errorf("container detail = %q", sig.ContainerDetail)
	}
}

func TestProbe_ContainerAbsent(t *testing.T) {
	spec := proberSpec(closedPort(t))
	rt := runtimetest.NewFakeRuntime()

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeDown {
		t.Fatalf("composite = %s, want down", got)
	}
	if sig.ContainerDetail != "container not found" {
		t.Errorf("container detail = %q", sig.ContainerDetail)
	}
	if sig.PortReachable {
		t.Error("port should not be reachable")
	}
}

func TestProbe_ContainerStopped(t *testing.T) {
	spec := proberSpec(closedPort(t))
	rt := runtimetest.NewFakeRuntime()
	rt.Seed(spec, false, types.HealthStateUnknown)

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeDown {
		t.Fatalf("composite = %s, want down", got)
	}
	if !strings.Contains(sig.ContainerDetail, "exited") {
		t.Errorf("container detail = %q, want exited status", sig.ContainerDetail)
	}
}

func TestProbe_PortClosed(t *testing.T) {
	spec := proberSpec(closedPort(t))
	rt := runtimetest.NewFakeRuntime()
	rt.Seed(spec, true, types.HealthStateHealthy)

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeDegraded {
		t.Fatalf("composite = %s, want degraded", got)
	}
	if !strings.Contains(sig.PortDetail, "connection failed") {
		t.Errorf("port detail = %q", sig.PortDetail)
	}
}

// A service without a HEALTHCHECK reports unknown runtime health forever
// and can never be fully healthy.
func TestProbe_NoHealthcheckNeverHealthy(t *testing.T) {
	spec := proberSpec(listen(t))
	rt := runtimetest.NewFakeRuntime()
	rt.Seed(spec, true, types.HealthStateUnknown)

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeDegraded {
		t.Fatalf("composite = %s, want degraded", got)
	}
}

func TestProbe_InspectErrorIsNegativeSignal(t *testing.T) {
	spec := proberSpec(closedPort(t))
	rt := runtimetest.NewFakeRuntime()
	rt.InspectErr = func(ctx context.Context, name string) error {
		return context.DeadlineExceeded
	}

	sig := NewProber(rt).Probe(context.Background(), spec)

	if got := sig.Composite(); got != CompositeDown {
		t.Fatalf("composite = %s, want down", got)
	}
	if !strings.Contains(sig.ContainerDetail, "inspect failed") {
		t.Errorf("container detail = %q", sig.ContainerDetail)
	}
}

// Probe must return within the sub-check budgets even when the runtime
// hangs.
func TestProbe_DurationBounded(t *testing.T) {
	spec := proberSpec(closedPort(t))
	spec.ProbeTimeout = types.Duration(50 * time.Millisecond)

	rt := runtimetest.NewFakeRuntime()
	rt.InspectErr = func(ctx context.Context, name string) error {
		// Hang until the probe's own timeout fires.
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	sig := NewProber(rt).Probe(context.Background(), spec)
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Fatalf("probe took %v, want well under 500ms", elapsed)
	}
	if sig.Composite() != CompositeDown {
		t.Errorf("composite = %s, want down", sig.Composite())
	}
}

func TestWait_SettlesAfterPolls(t *testing.T) {
	spec := proberSpec(listen(t))
	rt := runtimetest.NewFakeRuntime()
	rt.SettleAfter = 2
	if err := rt.Start(context.Background(), spec); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rt.Reset()

	polls, sig, err := NewProber(rt).Wait(context.Background(), spec)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
	if !sig.Healthy() {
		t.Errorf("final signal not healthy: %+v", sig)
	}
}

func TestWait_ExhaustsAttempts(t *testing.T) {
	spec := proberSpec(listen(t))
	spec.MaxAttempts = 3

	rt := runtimetest.NewFakeRuntime()
	rt.HealthAfterStart = types.HealthStateUnhealthy
	if err := rt.Start(context.Background(), spec); err != nil {
		t.Fatalf("Start: %v", err)
	}

	polls, sig, err := NewProber(rt).Wait(context.Background(), spec)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
	if sig.Healthy() {
		t.Error("final signal should not be healthy")
	}
}

func TestWait_Cancellation(t *testing.T) {
	spec := proberSpec(closedPort(t))
	spec.PollInterval = types.Duration(time.Hour)

	rt := runtimetest.NewFakeRuntime()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	polls, _, err := NewProber(rt).Wait(ctx, spec)
	if err == nil {
		t.Fatal("Wait should surface cancellation")
	}
	if polls != 1 {
		t.Errorf("polls = %d, want 1", polls)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Wait took %v after cancellation", time.Since(start))
	}
}
