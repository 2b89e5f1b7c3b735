package runtime

import (
	"context"
	"time"

	"vigil/pkg/types"
)

// Runtime is the narrow container-runtime surface the watchdog needs.
// The supervisor serializes all calls, so implementations are not
// required to be internally synchronized.
type Runtime interface {
	// Start creates and starts the service container, pulling the image
	// according to the spec's pull policy.
	Start(ctx context.Context, spec types.ServiceSpec) error

	// Stop gracefully stops the named container, force-killing after
	// timeout. Stopping an absent container is a no-op.
	Stop(ctx context.Context, name string, timeout time.Duration) error

	// Remove force-removes the named container. Removing an absent
	// container is a no-op.
	Remove(ctx context.Context, name string) error

	// Inspect reports the container's current state. An absent container
	// yields ContainerState{Exists: false} with no error; errors are
	// reserved for runtime transport failures.
	Inspect(ctx context.Context, name string) (types.ContainerState, error)

	// Logs returns up to tail trailing lines of the container's output.
	Logs(ctx context.Context, name string, tail int) ([]string, error)

	// Ping verifies the runtime daemon is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client connection.
	Close() error
}
