package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default timing values applied by ApplyDefaults. The readiness budget
// that follows from them is MaxAttempts x PollInterval = 60s.
const (
	DefaultProbeTimeout   = 5 * time.Second
	DefaultPollInterval   = 2 * time.Second
	DefaultMaxAttempts    = 30
	DefaultCheckInterval  = 30 * time.Second
	DefaultStopTimeout    = 10 * time.Second
	DefaultLogTail        = 50
	DefaultHealthInterval = 10 * time.Second
	DefaultHealthRetries  = 3
)

// Duration wraps time.Duration so specs can carry human-readable values
// like "30s" or "2m" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PullPolicy controls when the runtime pulls the service image.
type PullPolicy string

const (
	PullMissing PullPolicy = "missing" // pull only when the image is absent
	PullAlways  PullPolicy = "always"  // pull before every create
	PullNever   PullPolicy = "never"   // fail if the image is absent
)

// HealthState is the runtime-reported health of the watched container.
// Runtimes without a configured health check, containers still in their
// start period, and failed health queries all report HealthStateUnknown.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateUnhealthy HealthState = "unhealthy"
	HealthStateUnknown   HealthState = "unknown"
)

// ServiceSpec describes the single service instance the watchdog owns.
// It is assembled at configuration time and never mutated afterwards;
// every component receives it by value.
type ServiceSpec struct {
	// Name is the container name. The watchdog treats the container with
	// this exact name as exclusively its own.
	Name string `yaml:"name"`

	// Image is the full image reference to (re)create the container from.
	Image string `yaml:"image"`

	// Port is the published host port probed for TCP reachability.
	Port int `yaml:"port"`

	// ContainerPort is the port inside the container. Defaults to Port.
	ContainerPort int `yaml:"containerPort,omitempty"`

	// GPUs requests GPU device passthrough: "" (none), "all", or a count.
	GPUs string `yaml:"gpus,omitempty"`

	// Env holds KEY=VALUE pairs passed to the container.
	Env []string `yaml:"env,omitempty"`

	// Volumes holds bind specs in "src:dst[:ro]" form.
	Volumes []string `yaml:"volumes,omitempty"`

	// RestartPolicy is the runtime-level restart policy for the container.
	// The watchdog recreates on unhealthiness regardless; the runtime
	// policy only covers plain process exits between check cycles.
	RestartPolicy string `yaml:"restartPolicy,omitempty"`

	// Pull controls image pulling during recovery.
	Pull PullPolicy `yaml:"pull,omitempty"`

	// HealthCmd, when set, injects a health check the runtime runs inside
	// the container through its shell. Leave empty to rely on the image's
	// own HEALTHCHECK. Without either, the runtime-health signal stays
	// unknown and the service can reach degraded at best.
	HealthCmd string `yaml:"healthCmd,omitempty"`

	// HealthInterval and HealthRetries tune the injected check. Ignored
	// when HealthCmd is empty.
	HealthInterval Duration `yaml:"healthInterval,omitempty"`
	HealthRetries  int      `yaml:"healthRetries,omitempty"`

	// HealthStartPeriod suppresses failing checks while the service warms
	// up. Model servers loading weights can need minutes.
	HealthStartPeriod Duration `yaml:"healthStartPeriod,omitempty"`

	// ProbeTimeout bounds each individual health sub-check.
	ProbeTimeout Duration `yaml:"probeTimeout,omitempty"`

	// PollInterval is the spacing between readiness probes after a
	// recreate, and MaxAttempts caps how many are issued.
	PollInterval Duration `yaml:"pollInterval,omitempty"`
	MaxAttempts  int      `yaml:"maxAttempts,omitempty"`

	// CheckInterval is the supervision loop's sleep between cycles.
	CheckInterval Duration `yaml:"checkInterval,omitempty"`

	// StopTimeout is the grace period before the runtime force-kills the
	// container during a stop.
	StopTimeout Duration `yaml:"stopTimeout,omitempty"`

	// LogTail is how many container log lines status reports include.
	LogTail int `yaml:"logTail,omitempty"`
}

// ApplyDefaults fills unset fields with the package defaults.
func (s *ServiceSpec) ApplyDefaults() {
	if s.ContainerPort == 0 {
		s.ContainerPort = s.Port
	}
	if s.RestartPolicy == "" {
		s.RestartPolicy = "unless-stopped"
	}
	if s.Pull == "" {
		s.Pull = PullMissing
	}
	if s.HealthCmd != "" {
		if s.HealthInterval == 0 {
			s.HealthInterval = Duration(DefaultHealthInterval)
		}
		if s.HealthRetries == 0 {
			s.HealthRetries = DefaultHealthRetries
		}
	}
	if s.ProbeTimeout == 0 {
		s.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
	if s.PollInterval == 0 {
		s.PollInterval = Duration(DefaultPollInterval)
	}
	if s.MaxAttempts == 0 {
		s.MaxAttempts = DefaultMaxAttempts
	}
	if s.CheckInterval == 0 {
		s.CheckInterval = Duration(DefaultCheckInterval)
	}
	if s.StopTimeout == 0 {
		s.StopTimeout = Duration(DefaultStopTimeout)
	}
	if s.LogTail == 0 {
		s.LogTail = DefaultLogTail
	}
}

// Validate checks the spec for fields the watchdog cannot work without.
func (s *ServiceSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if strings.ContainsAny(s.Name, " /") {
		return fmt.Errorf("service name %q must not contain spaces or slashes", s.Name)
	}
	if s.Image == "" {
		return fmt.Errorf("service image is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("service port %d is out of range", s.Port)
	}
	switch s.Pull {
	case PullMissing, PullAlways, PullNever:
	default:
		return fmt.Errorf("unsupported pull policy %q", s.Pull)
	}
	switch s.RestartPolicy {
	case "no", "always", "unless-stopped", "on-failure":
	default:
		return fmt.Errorf("unsupported restart policy %q", s.RestartPolicy)
	}
	if s.GPUs != "" && s.GPUs != "all" {
		if n, err := strconv.Atoi(s.GPUs); err != nil || n <= 0 {
			return fmt.Errorf("gpus must be \"all\" or a positive count, got %q", s.GPUs)
		}
	}
	for _, v := range s.Volumes {
		if parts := strings.Split(v, ":"); len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("volume %q must be src:dst or src:dst:ro", v)
		}
	}
	if s.HealthRetries < 0 {
		return fmt.Errorf("healthRetries must not be negative")
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be at least 1")
	}
	return nil
}

// ReadinessBudget is the maximum time a recovery waits for the service
// to come up: MaxAttempts probes spaced PollInterval apart.
func (s *ServiceSpec) ReadinessBudget() time.Duration {
	return time.Duration(s.MaxAttempts) * s.PollInterval.Std()
}

// Address returns the probe target for the published port.
func (s *ServiceSpec) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", s.Port)
}

// ContainerState is the runtime's view of the watched container at one
// point in time.
type ContainerState struct {
	Exists    bool
	Running   bool
	Status    string // raw runtime status, e.g. "running", "exited"
	Health    HealthState
	StartedAt time.Time
	ExitCode  int
}
