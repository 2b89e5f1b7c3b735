package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vigil/pkg/config"
	"vigil/pkg/log"
	"vigil/pkg/runtime"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - Watchdog for a containerized GPU service",
	Long: `Vigil keeps one containerized, GPU-backed network service alive.

It probes three health signals (container running, TCP port reachable,
runtime-reported health), runs a bounded stop/remove/recreate recovery
when any signal degrades, and reports status for operators. Install it
as a systemd unit for unattended supervision.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Vigil version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath,
		"Path to the vigil config file")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initLogging)
}

// initLogging sets up console logging for one-shot commands. The
// monitor command re-initializes from its config before the loop
// starts.
func initLogging() {
	log.Init(log.Config{Level: log.InfoLevel})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

func newRuntime() (*runtime.DockerRuntime, error) {
	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		return nil, fmt.Errorf("connect container runtime: %w", err)
	}
	return rt, nil
}
