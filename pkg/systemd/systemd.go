package systemd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"vigil/pkg/log"
)

// ErrPermission is returned when an operation needs root and the
// process does not have it.
var ErrPermission = errors.New("operation requires root")

const (
	defaultUnitDir = "/etc/systemd/system"
	defaultLogDir  = "/var/log/vigil"
)

// CommandRunner executes systemctl with the given arguments and
// returns its combined output. Swapped for a recorder in tests.
type CommandRunner func(ctx context.Context, args ...string) (string, error)

func systemctl(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "systemctl", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("systemctl %s: %s: %w",
			strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// InstallConfig describes the unit to install.
type InstallConfig struct {
	// ServiceName is the watched service. The unit is named
	// vigil-<ServiceName>.service.
	ServiceName string

	// ConfigPath is passed to `vigil monitor --config`.
	ConfigPath string

	// LogDir receives the unit's append-mode log file. Defaults to
	// /var/log/vigil.
	LogDir string

	// BinaryPath overrides vigil binary resolution.
	BinaryPath string
}

// UnitStatus is the systemd view of a vigil unit.
type UnitStatus struct {
	Exists  bool
	Enabled bool
	Active  bool
}

// Manager installs, removes, and inspects vigil systemd units.
type Manager struct {
	unitDir string
	logDir  string
	runner  CommandRunner
	euid    func() int
	logger  zerolog.Logger
}

// NewManager creates a manager operating on /etc/systemd/system.
func NewManager() *Manager {
	return &Manager{
		unitDir: defaultUnitDir,
		logDir:  defaultLogDir,
		runner:  systemctl,
		euid:    os.Geteuid,
		logger:  log.WithComponent("systemd"),
	}
}

// UnitName returns the unit file name for a watched service.
func UnitName(service string) string {
	return "vigil-" + service + ".service"
}

// UnitPath returns the absolute unit file path for a watched service.
func (m *Manager) UnitPath(service string) string {
	return filepath.Join(m.unitDir, UnitName(service))
}

// Install writes the unit file and brings the unit up. Reinstalling
// overwrites the existing unit, so calling it twice is safe.
func (m *Manager) Install(ctx context.Context, cfg InstallConfig) error {
	if m.euid() != 0 {
		return fmt.Errorf("%w: install needs sudo", ErrPermission)
	}

	bin := cfg.BinaryPath
	if bin == "" {
		var err error
		bin, err = resolveBinary("vigil")
		if err != nil {
			return fmt.Errorf("resolve vigil binary: %w", err)
		}
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = m.logDir
	}
	logPath := filepath.Join(logDir, UnitName(cfg.ServiceName)+".log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create unit log file: %w", err)
	}
	_ = logFile.Close()

	unit := renderUnit(cfg.ServiceName, bin, cfg.ConfigPath, logPath)
	unitPath := m.UnitPath(cfg.ServiceName)
	if err := os.WriteFile(unitPath, []byte(unit), 0o644); err != nil {
		return fmt.Errorf("write unit file: %w", err)
	}

	if _, err := m.runner(ctx, "daemon-reload"); err != nil {
		return err
	}
	if _, err := m.runner(ctx, "enable", "--now", UnitName(cfg.ServiceName)); err != nil {
		return fmt.Errorf("enable unit: %w", err)
	}
	// Restart picks up the new unit content when the unit was already
	// running from a previous install.
	if _, err := m.runner(ctx, "restart", UnitName(cfg.ServiceName)); err != nil {
		return fmt.Errorf("restart unit: %w", err)
	}

	m.logger.Info().
		Str("service", cfg.ServiceName).
		Str("unit", unitPath).
		Msg("Installed systemd unit")
	return nil
}

// Uninstall stops and removes the unit. Missing pieces are skipped, so
// uninstalling an absent unit succeeds.
func (m *Manager) Uninstall(ctx context.Context, service string) error {
	if m.euid() != 0 {
		return fmt.Errorf("%w: uninstall needs sudo", ErrPermission)
	}

	_, _ = m.runner(ctx, "disable", "--now", UnitName(service))

	if err := os.Remove(m.UnitPath(service)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove unit file: %w", err)
	}

	_, _ = m.runner(ctx, "daemon-reload")

	m.logger.Info().Str("service", service).Msg("Removed systemd unit")
	return nil
}

// Status reports unit file presence and systemd's enabled/active view.
func (m *Manager) Status(ctx context.Context, service string) UnitStatus {
	var st UnitStatus

	if _, err := os.Stat(m.UnitPath(service)); err == nil {
		st.Exists = true
	}
	if _, err := m.runner(ctx, "is-enabled", "--quiet", UnitName(service)); err == nil {
		st.Enabled = true
	}
	if _, err := m.runner(ctx, "is-active", "--quiet", UnitName(service)); err == nil {
		st.Active = true
	}
	return st
}

func renderUnit(service, bin, configPath, logPath string) string {
	return fmt.Sprintf(`[Unit]
Description=vigil watchdog for %s
After=network-online.target docker.service
Wants=network-online.target

[Service]
Type=simple
ExecStart=%s monitor --config %s
Restart=always
RestartSec=5
StandardOutput=append:%s
StandardError=append:%s

[Install]
WantedBy=multi-user.target
`, service, bin, configPath, logPath, logPath)
}

// resolveBinary locates the installed vigil binary: next to the
// current executable first, then PATH, then /usr/local/bin.
func resolveBinary(name string) (string, error) {
	if exePath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exePath), name)
		if st, statErr := os.Stat(candidate); statErr == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	installed := filepath.Join("/usr/local/bin", name)
	if st, err := os.Stat(installed); err == nil && !st.IsDir() {
		return installed, nil
	}
	return "", fmt.Errorf("%s not found next to the executable, in PATH, or in /usr/local/bin", name)
}
