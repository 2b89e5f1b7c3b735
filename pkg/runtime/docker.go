package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog"

	"vigil/pkg/log"
	"vigil/pkg/types"
)

// DockerRuntime implements Runtime against the Docker Engine API.
type DockerRuntime struct {
	cli    client.APIClient
	logger zerolog.Logger
}

// NewDockerRuntime connects to the Docker daemon using the standard
// environment configuration (DOCKER_HOST and friends).
func NewDockerRuntime() (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerRuntime{
		cli:    cli,
		logger: log.WithComponent("runtime"),
	}, nil
}

// Close closes the docker client connection
func (r *DockerRuntime) Close() error {
	if r.cli != nil {
		return r.cli.Close()
	}
	return nil
}

// Ping verifies the docker daemon is reachable
func (r *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach docker daemon: %w", err)
	}
	return nil
}

// Start creates and starts the service container. When the image is
// missing locally it pulls and retries the create, unless the spec's
// pull policy forbids it.
func (r *DockerRuntime) Start(ctx context.Context, spec types.ServiceSpec) error {
	if spec.Pull == types.PullAlways {
		if err := r.pullImage(ctx, spec.Image); err != nil {
			return err
		}
	}

	cfg, hostCfg, err := containerConfig(spec)
	if err != nil {
		return err
	}

	_, err = r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		if !errdefs.IsNotFound(err) || spec.Pull == types.PullNever {
			return fmt.Errorf("failed to create container: %w", err)
		}
		if err := r.pullImage(ctx, spec.Image); err != nil {
			return err
		}
		if _, err = r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name); err != nil {
			return fmt.Errorf("failed to create container after pull: %w", err)
		}
	}

	if err := r.cli.ContainerStart(ctx, spec.Name, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	r.logger.Info().
		Str("container", spec.Name).
		Str("image", spec.Image).
		Msg("Container started")
	return nil
}

// Stop gracefully stops the container, force-killing after timeout.
// A missing container is not an error.
func (r *DockerRuntime) Stop(ctx context.Context, name string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	err := r.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &seconds})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// Remove force-removes the container. A missing container is not an error.
func (r *DockerRuntime) Remove(ctx context.Context, name string) error {
	err := r.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// Inspect reports the container's current state. An absent container is
// reported as Exists=false, not as an error.
func (r *DockerRuntime) Inspect(ctx context.Context, name string) (types.ContainerState, error) {
	info, err := r.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return types.ContainerState{Health: types.HealthStateUnknown}, nil
		}
		return types.ContainerState{}, fmt.Errorf("failed to inspect container: %w", err)
	}
	return stateFromInspect(info), nil
}

// Logs returns up to tail trailing lines of combined stdout and stderr.
func (r *DockerRuntime) Logs(ctx context.Context, name string, tail int) ([]string, error) {
	rc, err := r.cli.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch container logs: %w", err)
	}
	defer rc.Close()

	// The stream multiplexes stdout and stderr; demux both into one buffer.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return nil, fmt.Errorf("failed to read container logs: %w", err)
	}

	return tailLines(buf.String(), tail), nil
}

func (r *DockerRuntime) pullImage(ctx context.Context, imageRef string) error {
	r.logger.Info().Str("image", imageRef).Msg("Pulling image")

	resp, err := r.cli.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	defer resp.Close()

	// Drain the pull progress stream to completion.
	if _, err := io.Copy(io.Discard, resp); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	return nil
}

// containerConfig translates a service spec into Docker create payloads.
func containerConfig(spec types.ServiceSpec) (*container.Config, *container.HostConfig, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(spec.ContainerPort))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid container port %d: %w", spec.ContainerPort, err)
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: nat.PortSet{port: struct{}{}},
		Labels: map[string]string{
			"vigil.managed": "true",
			"vigil.service": spec.Name,
		},
	}
	if spec.HealthCmd != "" {
		cfg.Healthcheck = &container.HealthConfig{
			Test:        []string{"CMD-SHELL", spec.HealthCmd},
			Interval:    spec.HealthInterval.Std(),
			Timeout:     spec.ProbeTimeout.Std(),
			Retries:     spec.HealthRetries,
			StartPeriod: spec.HealthStartPeriod.Std(),
		}
	}

	hostCfg := &container.HostConfig{
		Binds: spec.Volumes,
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostPort: strconv.Itoa(spec.Port)}},
		},
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyMode(spec.RestartPolicy),
		},
	}

	reqs, err := deviceRequests(spec.GPUs)
	if err != nil {
		return nil, nil, err
	}
	hostCfg.Resources.DeviceRequests = reqs

	return cfg, hostCfg, nil
}

// deviceRequests builds GPU passthrough requests: "all" maps to count -1
// (every device), a number requests that many devices.
func deviceRequests(gpus string) ([]container.DeviceRequest, error) {
	if gpus == "" {
		return nil, nil
	}

	req := container.DeviceRequest{
		Count:        -1,
		Capabilities: [][]string{{"gpu"}},
	}
	if gpus != "all" {
		n, err := strconv.Atoi(gpus)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid gpus value %q", gpus)
		}
		req.Count = n
	}
	return []container.DeviceRequest{req}, nil
}

// stateFromInspect maps the inspect payload onto the watchdog's view.
func stateFromInspect(info container.InspectResponse) types.ContainerState {
	state := types.ContainerState{
		Exists: true,
		Health: types.HealthStateUnknown,
	}
	if info.ContainerJSONBase == nil || info.State == nil {
		return state
	}

	state.Running = info.State.Running
	state.Status = info.State.Status
	state.ExitCode = info.State.ExitCode
	if t, err := time.Parse(time.RFC3339Nano, info.State.StartedAt); err == nil {
		state.StartedAt = t
	}
	if info.State.Health != nil {
		state.Health = healthState(info.State.Health.Status)
	}
	return state
}

// healthState maps Docker's health strings onto the three-state enum.
// "starting" means the check has not settled yet, which is unknown, not
// healthy. Containers without a HEALTHCHECK never leave unknown.
func healthState(s string) types.HealthState {
	switch s {
	case "healthy":
		return types.HealthStateHealthy
	case "unhealthy":
		return types.HealthStateUnhealthy
	default:
		return types.HealthStateUnknown
	}
}

// tailLines splits raw log output and returns at most n trailing lines.
func tailLines(raw string, n int) []string {
	trimmed := strings.TrimRight(raw, "\n")
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
