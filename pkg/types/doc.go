/*
Package types defines the core data structures used throughout Vigil.

This package contains the fundamental types that represent Vigil's domain
model: the service specification, runtime container state, and the health
vocabulary shared by the prober, recovery controller, and supervision loop.
Every other package depends on types; types depends on nothing but the
standard library and YAML decoding.

# Core Types

Service Description:
  - ServiceSpec: The single watched service (name, image, port, GPUs, timing)
  - PullPolicy: When the image is pulled (missing, always, never)
  - Duration: time.Duration with YAML support ("30s", "2m")

Runtime Observation:
  - ContainerState: Point-in-time container view (exists, running, health)
  - HealthState: Runtime-reported health (healthy, unhealthy, unknown)

# Usage

Building a spec:

	spec := types.ServiceSpec{
		Name:  "llm-server",
		Image: "ghcr.io/example/llm-server:latest",
		Port:  8000,
		GPUs:  "all",
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return err
	}

Interpreting an observation:

	state, err := rt.Inspect(ctx, spec.Name)
	if err != nil {
		return err
	}
	if !state.Exists || !state.Running {
		// container gone or stopped, recovery required
	}

# Design Patterns

Enumeration Pattern:

	All enums use typed string constants:
	  type HealthState string
	  const (
	      HealthStateHealthy HealthState = "healthy"
	  )

Defaults Pattern:

	ServiceSpec zero values mean "use the default". ApplyDefaults fills
	them in once at load time so downstream code never re-checks.

Unknown Is Not Healthy:

	HealthStateUnknown covers missing health checks, start periods, and
	failed queries alike. Callers must treat it as "cannot confirm", never
	as a pass. A container without a configured health check can therefore
	never be reported fully healthy.

# Thread Safety

ServiceSpec is assembled during startup and never mutated afterwards;
components receive it by value and may read it from any goroutine.
ContainerState is produced fresh by each runtime inspection and is never
shared across cycles.

# See Also

  - pkg/config for loading ServiceSpec from YAML and flags
  - pkg/runtime for producing ContainerState
  - pkg/health for the composite verdict built on these types
*/
package types
