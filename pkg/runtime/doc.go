/*
Package runtime provides container lifecycle operations via the Docker
Engine API.

The runtime package is Vigil's only boundary with the container runtime.
It exposes the narrow Runtime interface the rest of the watchdog is
written against, and one production implementation, DockerRuntime, built
on the official Docker SDK. Tests substitute fakes; nothing outside this
package imports the Docker client.

# Architecture

	┌────────────────── RUNTIME BOUNDARY ───────────────────┐
	│                                                        │
	│   pkg/health  pkg/recovery  pkg/status                 │
	│        │           │            │                      │
	│        └───────────┼────────────┘                      │
	│                    ▼                                   │
	│           ┌─────────────────┐                          │
	│           │    Runtime      │  interface               │
	│           │  Start/Stop     │                          │
	│           │  Remove/Inspect │                          │
	│           │  Logs/Ping      │                          │
	│           └────────┬────────┘                          │
	│                    │                                   │
	│           ┌────────▼────────┐                          │
	│           │  DockerRuntime  │  Docker SDK              │
	│           └────────┬────────┘                          │
	│                    │ unix:///var/run/docker.sock       │
	│           ┌────────▼────────┐                          │
	│           │  Docker Engine  │                          │
	│           └─────────────────┘                          │
	└────────────────────────────────────────────────────────┘

# Idempotency

Stop and Remove tolerate an absent container: a recovery sequence must be
safe to run from any starting state, including one where the previous
recovery already tore the container down. Not-found errors from the
daemon are recognized with errdefs.IsNotFound and swallowed.

Inspect follows the same rule from the read side: an absent container is
a valid observation (Exists=false), not an error. Errors from Inspect
mean the daemon itself could not be queried.

# Container Creation

Start translates the ServiceSpec into a single container:

  - Published port: host Port to ContainerPort via nat.PortMap
  - GPU passthrough: DeviceRequest with the gpu capability
    ("all" requests every device, a count requests that many)
  - Volumes: bind specs passed through as given
  - Restart policy: runtime-level policy from the spec
  - Health check: an injected CMD-SHELL HEALTHCHECK when the spec
    carries healthCmd
  - Labels: vigil.managed / vigil.service for operator tooling

When create fails because the image is missing, Start pulls it and
retries once, unless the pull policy is "never". The "always" policy
pulls up front on every Start.

# Health Reporting

Inspect surfaces the runtime's own health verdict from the container's
HEALTHCHECK. Docker reports "starting" during the check's start period;
that maps to unknown, as does a missing HEALTHCHECK. Images watched by
Vigil should define a HEALTHCHECK, or the spec should inject one via
healthCmd: without either, the runtime-health signal never turns
positive and the composite status cannot reach healthy.

# Usage

	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	state, err := rt.Inspect(ctx, spec.Name)
	if err != nil {
		return err
	}
	if !state.Running {
		if err := rt.Start(ctx, spec); err != nil {
			return err
		}
	}

# See Also

  - pkg/health for the composite verdict built on Inspect
  - pkg/recovery for the stop/remove/start sequence
  - Docker Engine API: https://docs.docker.com/engine/api/
*/
package runtime
