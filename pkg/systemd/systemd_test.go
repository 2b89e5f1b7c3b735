package systemd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerRecorder struct {
	calls [][]string
	fail  map[string]error
}

func (r *runnerRecorder) run(ctx context.Context, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	if err := r.fail[args[0]]; err != nil {
		return "", err
	}
	return "", nil
}

func (r *runnerRecorder) verbs() []string {
	verbs := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		verbs = append(verbs, call[0])
	}
	return verbs
}

func testManager(t *testing.T) (*Manager, *runnerRecorder) {
	t.Helper()
	rec := &runnerRecorder{fail: map[string]error{}}
	return &Manager{
		unitDir: t.TempDir(),
		logDir:  t.TempDir(),
		runner:  rec.run,
		euid:    func() int { return 0 },
		logger:  zerolog.Nop(),
	}, rec
}

func installConfig() InstallConfig {
	return InstallConfig{
		ServiceName: "llm-server",
		ConfigPath:  "/etc/vigil/config.yaml",
		BinaryPath:  "/usr/local/bin/vigil",
	}
}

func TestInstall_WritesUnitAndStartsIt(t *testing.T) {
	m, rec := testManager(t)

	require.NoError(t, m.Install(context.Background(), installConfig()))

	content, err := os.ReadFile(m.UnitPath("llm-server"))
	require.NoError(t, err)

	unit := string(content)
	assert.Contains(t, unit, "Description=vigil watchdog for llm-server")
	assert.Contains(t, unit, "After=network-online.target docker.service")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/vigil monitor --config /etc/vigil/config.yaml")
	assert.Contains(t, unit, "Restart=always")
	assert.Contains(t, unit, "StandardOutput=append:")
	assert.Contains(t, unit, "StandardError=append:")
	assert.Contains(t, unit, "WantedBy=multi-user.target")

	assert.Equal(t, []string{"daemon-reload", "enable", "restart"}, rec.verbs())
	assert.Equal(t, []string{"enable", "--now", "vigil-llm-server.service"}, rec.calls[1])

	// The append-mode log file is pre-created.
	logPath := filepath.Join(m.logDir, "vigil-llm-server.service.log")
	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestInstall_TwiceIsIdempotent(t *testing.T) {
	m, rec := testManager(t)

	require.NoError(t, m.Install(context.Background(), installConfig()))
	require.NoError(t, m.Install(context.Background(), installConfig()))

	entries, err := os.ReadDir(m.unitDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "reinstall must overwrite, not duplicate")
	assert.Equal(t, "vigil-llm-server.service", entries[0].Name())

	// Both installs go through the full systemctl sequence.
	assert.Equal(t, []string{
		"daemon-reload", "enable", "restart",
		"daemon-reload", "enable", "restart",
	}, rec.verbs())
}

func TestInstall_RequiresRoot(t *testing.T) {
	m, rec := testManager(t)
	m.euid = func() int { return 1000 }

	err := m.Install(context.Background(), installConfig())

	require.ErrorIs(t, err, ErrPermission)
	assert.Empty(t, rec.calls, "no systemctl calls without root")

	_, statErr := os.Stat(m.UnitPath("llm-server"))
	assert.True(t, os.IsNotExist(statErr), "no unit file without root")
}

func TestInstall_EnableFailure(t *testing.T) {
	m, rec := testManager(t)
	rec.fail["enable"] = errors.New("unit masked")

	err := m.Install(context.Background(), installConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "enable unit")
}

func TestUninstall(t *testing.T) {
	m, rec := testManager(t)
	require.NoError(t, m.Install(context.Background(), installConfig()))

	require.NoError(t, m.Uninstall(context.Background(), "llm-server"))

	_, err := os.Stat(m.UnitPath("llm-server"))
	assert.True(t, os.IsNotExist(err), "unit file should be removed")

	verbs := strings.Join(rec.verbs(), ",")
	assert.Contains(t, verbs, "disable")
	assert.True(t, strings.HasSuffix(verbs, "daemon-reload"))
}

func TestUninstall_AbsentUnit(t *testing.T) {
	m, _ := testManager(t)

	assert.NoError(t, m.Uninstall(context.Background(), "never-installed"))
}

func TestUninstall_RequiresRoot(t *testing.T) {
	m, _ := testManager(t)
	m.euid = func() int { return 1000 }

	require.ErrorIs(t, m.Uninstall(context.Background(), "llm-server"), ErrPermission)
}

func TestStatus(t *testing.T) {
	m, rec := testManager(t)
	require.NoError(t, m.Install(context.Background(), installConfig()))

	st := m.Status(context.Background(), "llm-server")
	assert.True(t, st.Exists)
	assert.True(t, st.Enabled)
	assert.True(t, st.Active)

	rec.fail["is-active"] = errors.New("inactive")
	st = m.Status(context.Background(), "llm-server")
	assert.True(t, st.Exists)
	assert.True(t, st.Enabled)
	assert.False(t, st.Active)
}

func TestStatus_NotInstalled(t *testing.T) {
	m, rec := testManager(t)
	rec.fail["is-enabled"] = errors.New("no such unit")
	rec.fail["is-active"] = errors.New("no such unit")

	st := m.Status(context.Background(), "llm-server")
	assert.False(t, st.Exists)
	assert.False(t, st.Enabled)
	assert.False(t, st.Active)
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "vigil-llm-server.service", UnitName("llm-server"))
}
