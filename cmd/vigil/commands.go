package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vigil/pkg/config"
	"vigil/pkg/health"
	"vigil/pkg/log"
	"vigil/pkg/metrics"
	"vigil/pkg/recovery"
	"vigil/pkg/status"
	"vigil/pkg/supervisor"
	"vigil/pkg/systemd"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the service once and report its health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		sig := health.NewProber(rt).Probe(cmd.Context(), cfg.Service)
		comp := sig.Composite()

		fmt.Printf("%s: %s\n", cfg.Service.Name, comp)
		fmt.Printf("  container: %s\n", sig.ContainerDetail)
		fmt.Printf("  port:      %s (%s)\n", cfg.Service.Address(), sig.PortDetail)
		fmt.Printf("  runtime:   %s\n", sig.RuntimeDetail)

		if !sig.Healthy() {
			return fmt.Errorf("service %s is %s", cfg.Service.Name, comp)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the full operator status report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		reporter := status.NewReporter(rt, health.NewProber(rt), systemd.NewManager())
		rep, err := reporter.Report(cmd.Context(), cfg.Service)
		if err != nil {
			return err
		}
		rep.Render(os.Stdout)
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Force one recovery cycle now",
	Long: `Run one stop/remove/recreate/wait cycle regardless of current health.

Useful for first-time creation of the service container and for forcing
a clean restart after a config change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		prober := health.NewProber(rt)
		attempt := recovery.NewController(rt, prober).Recover(cmd.Context(), cfg.Service)
		if attempt.Outcome != recovery.OutcomeSucceeded {
			return fmt.Errorf("recovery %s: %v", attempt.Outcome, attempt.Err)
		}

		fmt.Printf("✓ %s is healthy after %d readiness probes (%s)\n",
			cfg.Service.Name, attempt.Polls, attempt.Duration.Round(time.Millisecond))
		return nil
	},
}

var (
	monitorMetricsAddr string
	monitorLogFile     string
	monitorBackoff     bool
	monitorMaxFailures int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Supervise the service in the foreground",
	Long: `Run the supervision loop until interrupted: probe the service every
check interval and recover it whenever it is not fully healthy.

This is the command the systemd unit runs. SIGINT or SIGTERM stops the
loop cleanly with exit code 0; a failed recovery never terminates the
process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Flags override file settings when set.
		if cmd.Flags().Changed("metrics-addr") {
			cfg.Metrics.Addr = monitorMetricsAddr
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = monitorLogFile
		}
		if cmd.Flags().Changed("backoff") {
			cfg.Supervisor.BackoffEnabled = monitorBackoff
			cfg.Normalize()
		}
		if cmd.Flags().Changed("max-failures") {
			cfg.Supervisor.MaxConsecutiveFailures = monitorMaxFailures
		}

		if err := setupMonitorLogging(cfg); err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		pingCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := rt.Ping(pingCtx); err != nil {
			return fmt.Errorf("container runtime unreachable: %w", err)
		}

		metrics.SetVersion(Version)
		metrics.SetService(cfg.Service.Name)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Metrics.Addr != "" {
			// The endpoint is auxiliary; losing it never stops supervision.
			go func() {
				if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
					log.Errorf("Metrics endpoint failed", err)
				}
			}()
		}

		prober := health.NewProber(rt)
		loop := supervisor.NewLoop(prober, recovery.NewController(rt, prober), cfg.Service,
			supervisor.Options{
				BackoffEnabled:         cfg.Supervisor.BackoffEnabled,
				BackoffMax:             cfg.Supervisor.BackoffMax.Std(),
				MaxConsecutiveFailures: cfg.Supervisor.MaxConsecutiveFailures,
			})
		return loop.Run(ctx)
	},
}

// setupMonitorLogging applies the config's log section. A file sink is
// opened in append mode and stays open for the process lifetime.
func setupMonitorLogging(cfg *config.Config) error {
	logCfg := log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logCfg.Output = f
		logCfg.JSONOutput = true
	}
	log.Init(logCfg)
	return nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and start the systemd unit",
	Long: `Write a systemd unit that runs 'vigil monitor' for the configured
service, then enable and start it. Requires root. Reinstalling
overwrites the unit, so rerun after config changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// systemd starts units from /, so the unit needs an absolute
		// config path.
		absConfig, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}

		m := systemd.NewManager()
		if err := m.Install(cmd.Context(), systemd.InstallConfig{
			ServiceName: cfg.Service.Name,
			ConfigPath:  absConfig,
		}); err != nil {
			return err
		}

		fmt.Printf("✓ Installed and started %s\n", systemd.UnitName(cfg.Service.Name))
		fmt.Printf("  Config: %s\n", absConfig)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop and remove the systemd unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m := systemd.NewManager()
		if err := m.Uninstall(cmd.Context(), cfg.Service.Name); err != nil {
			return err
		}

		fmt.Printf("✓ Removed %s\n", systemd.UnitName(cfg.Service.Name))
		return nil
	},
}

var logsTail int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the service container's recent log lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		tail := logsTail
		if !cmd.Flags().Changed("lines") {
			tail = cfg.Service.LogTail
		}

		lines, err := rt.Logs(cmd.Context(), cfg.Service.Name, tail)
		if err != nil {
			return fmt.Errorf("fetch logs: %w", err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Vigil version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics and health endpoints on this address")
	monitorCmd.Flags().StringVar(&monitorLogFile, "log-file", "",
		"Append JSON logs to this file instead of stderr")
	monitorCmd.Flags().BoolVar(&monitorBackoff, "backoff", false,
		"Double the check interval after consecutive failed recoveries")
	monitorCmd.Flags().IntVar(&monitorMaxFailures, "max-failures", 0,
		"Raise a critical alarm after this many consecutive failed recoveries (0 disables)")

	logsCmd.Flags().IntVarP(&logsTail, "lines", "n", 50, "Number of log lines to print")
}
