package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validSpec() ServiceSpec {
	s := ServiceSpec{
		Name:  "llm-server",
		Image: "ghcr.io/example/llm-server:latest",
		Port:  8000,
	}
	s.ApplyDefaults()
	return s
}

// TestServiceSpecValidate tests field validation after defaults are applied
func TestServiceSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServiceSpec)
		wantErr string
	}{
		{
			name:   "valid spec",
			mutate: func(s *ServiceSpec) {},
		},
		{
			name:    "missing name",
			mutate:  func(s *ServiceSpec) { s.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "name with slash",
			mutate:  func(s *ServiceSpec) { s.Name = "a/b" },
			wantErr: "must not contain",
		},
		{
			name:    "missing image",
			mutate:  func(s *ServiceSpec) { s.Image = "" },
			wantErr: "image is required",
		},
		{
			name:    "port zero",
			mutate:  func(s *ServiceSpec) { s.Port = 0 },
			wantErr: "out of range",
		},
		{
			name:    "port too large",
			mutate:  func(s *ServiceSpec) { s.Port = 70000 },
			wantErr: "out of range",
		},
		{
			name:    "bad pull policy",
			mutate:  func(s *ServiceSpec) { s.Pull = "sometimes" },
			wantErr: "pull policy",
		},
		{
			name:    "bad restart policy",
			mutate:  func(s *ServiceSpec) { s.RestartPolicy = "bounce" },
			wantErr: "restart policy",
		},
		{
			name:   "gpus all",
			mutate: func(s *ServiceSpec) { s.GPUs = "all" },
		},
		{
			name:   "gpus count",
			mutate: func(s *ServiceSpec) { s.GPUs = "2" },
		},
		{
			name:    "gpus garbage",
			mutate:  func(s *ServiceSpec) { s.GPUs = "most" },
			wantErr: "gpus",
		},
		{
			name:    "gpus negative",
			mutate:  func(s *ServiceSpec) { s.GPUs = "-1" },
			wantErr: "gpus",
		},
		{
			name:   "volume src:dst",
			mutate: func(s *ServiceSpec) { s.Volumes = []string{"/models:/models"} },
		},
		{
			name:   "volume read only",
			mutate: func(s *ServiceSpec) { s.Volumes = []string{"/models:/models:ro"} },
		},
		{
			name:    "volume missing dst",
			mutate:  func(s *ServiceSpec) { s.Volumes = []string{"/models"} },
			wantErr: "volume",
		},
		{
			name:    "zero attempts",
			mutate:  func(s *ServiceSpec) { s.MaxAttempts = 0 },
			wantErr: "maxAttempts",
		},
		{
			name:    "negative health retries",
			mutate:  func(s *ServiceSpec) { s.HealthRetries = -1 },
			wantErr: "healthRetries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	s := ServiceSpec{Name: "svc", Image: "img", Port: 9090}
	s.ApplyDefaults()

	assert.Equal(t, 9090, s.ContainerPort)
	assert.Equal(t, "unless-stopped", s.RestartPolicy)
	assert.Equal(t, PullMissing, s.Pull)
	assert.Equal(t, DefaultProbeTimeout, s.ProbeTimeout.Std())
	assert.Equal(t, DefaultPollInterval, s.PollInterval.Std())
	assert.Equal(t, DefaultMaxAttempts, s.MaxAttempts)
	assert.Equal(t, DefaultCheckInterval, s.CheckInterval.Std())
	assert.Equal(t, DefaultStopTimeout, s.StopTimeout.Std())
	assert.Equal(t, DefaultLogTail, s.LogTail)

	// Health check tuning stays zero until a command is configured.
	assert.Zero(t, s.HealthInterval)
	assert.Zero(t, s.HealthRetries)
}

func TestApplyDefaultsHealthCmd(t *testing.T) {
	s := ServiceSpec{Name: "svc", Image: "img", Port: 9090, HealthCmd: "curl -f http://127.0.0.1/health"}
	s.ApplyDefaults()

	assert.Equal(t, DefaultHealthInterval, s.HealthInterval.Std())
	assert.Equal(t, DefaultHealthRetries, s.HealthRetries)
	assert.Zero(t, s.HealthStartPeriod)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	s := ServiceSpec{
		Name:          "svc",
		Image:         "img",
		Port:          9090,
		ContainerPort: 8000,
		MaxAttempts:   5,
		PollInterval:  Duration(time.Second),
	}
	s.ApplyDefaults()

	assert.Equal(t, 8000, s.ContainerPort)
	assert.Equal(t, 5, s.MaxAttempts)
	assert.Equal(t, time.Second, s.PollInterval.Std())
}

func TestReadinessBudget(t *testing.T) {
	s := validSpec()
	// 30 attempts x 2s
	assert.Equal(t, 60*time.Second, s.ReadinessBudget())

	s.MaxAttempts = 5
	s.PollInterval = Duration(3 * time.Second)
	assert.Equal(t, 15*time.Second, s.ReadinessBudget())
}

func TestAddress(t *testing.T) {
	s := validSpec()
	assert.Equal(t, "127.0.0.1:8000", s.Address())
}

func TestDurationYAML(t *testing.T) {
	var spec ServiceSpec
	doc := `
name: llm-server
image: ghcr.io/example/llm-server:latest
port: 8000
checkInterval: 45s
probeTimeout: 1500ms
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &spec))
	assert.Equal(t, 45*time.Second, spec.CheckInterval.Std())
	assert.Equal(t, 1500*time.Millisecond, spec.ProbeTimeout.Std())
}

func TestDurationYAMLInvalid(t *testing.T) {
	var spec ServiceSpec
	err := yaml.Unmarshal([]byte("checkInterval: soon"), &spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}
