package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/pkg/types"
)

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	doc := `
service:
  name: llm-server
  image: ghcr.io/example/llm-server:latest
  port: 8000
  gpus: all
  checkInterval: 45s
log:
  level: debug
  json: true
metrics:
  addr: 127.0.0.1:9090
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "llm-server", cfg.Service.Name)
	assert.Equal(t, "all", cfg.Service.GPUs)
	assert.Equal(t, 45*time.Second, cfg.Service.CheckInterval.Std())
	// Normalize filled the rest
	assert.Equal(t, types.DefaultMaxAttempts, cfg.Service.MaxAttempts)
	assert.Equal(t, 8000, cfg.Service.ContainerPort)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := &Config{
		Service: types.ServiceSpec{
			Name:  "llm-server",
			Image: "ghcr.io/example/llm-server:latest",
			Port:  8000,
		},
		Log: LogConfig{Level: "info", JSON: true},
	}
	cfg.Normalize()
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Service.Name, loaded.Service.Name)
	assert.Equal(t, cfg.Service.CheckInterval, loaded.Service.CheckInterval)
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := &Config{
		Service: types.ServiceSpec{Name: "svc", Image: "img", Port: 80},
		Log:     LogConfig{Level: "loud"},
	}
	cfg.Service.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestNormalizeBackoffDefault(t *testing.T) {
	cfg := &Config{
		Service:    types.ServiceSpec{Name: "svc", Image: "img", Port: 80},
		Supervisor: SupervisorConfig{BackoffEnabled: true},
	}
	cfg.Normalize()
	assert.Equal(t, 10*types.DefaultCheckInterval, cfg.Supervisor.BackoffMax.Std())
}
