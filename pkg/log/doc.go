/*
Package log provides structured logging for Vigil using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level for production debugging.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all Vigil packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stderr, file)

# Usage

Initializing the Logger:

	import "vigil/pkg/log"

	// JSON output (production / journald)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
	})

Simple Logging:

	log.Info("Watchdog started")
	log.Warn("Port probe slow")
	log.Error("Failed to inspect container")

Structured Logging:

	log.Logger.Info().
		Str("service", "llm-server").
		Int("port", 8000).
		Msg("Service healthy")

Component Loggers:

	superLog := log.WithComponent("supervisor")
	superLog.Info().Int("cycle", n).Msg("Check cycle complete")

Critical Events:

	Critical() emits at fatal severity WITHOUT exiting the process. The
	supervision loop uses it when a recovery fails and the service stays
	down: the event must stand out to operators and alerting pipelines,
	but the loop itself keeps running.

	log.Critical().
		Str("service", "llm-server").
		Int("attempts", 30).
		Msg("Recovery failed, service remains down")

# Integration Points

This package integrates with:

  - pkg/supervisor: Logs check cycles and recovery outcomes
  - pkg/health: Logs probe results at debug level
  - pkg/recovery: Logs each recovery step
  - pkg/runtime: Logs container operations
  - pkg/systemd: Logs unit installation
  - cmd/vigil: Initializes the logger from flags

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing

Context Logger Pattern:
  - Create child loggers with context fields
  - Automatically includes context in all logs

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Consistent error format across codebase

# Log Output Examples

JSON Format (Production):

	{"level":"info","component":"supervisor","service":"llm-server","time":"2026-08-25T10:30:00Z","message":"Service healthy"}
	{"level":"fatal","component":"supervisor","attempts":30,"time":"2026-08-25T10:32:05Z","message":"Recovery failed, service remains down"}

Console Format (Development):

	10:30:00 INF Service healthy component=supervisor service=llm-server
	10:32:05 FTL Recovery failed, service remains down component=supervisor attempts=30

Note the fatal-severity line above comes from Critical() and does not
terminate the process; only Fatal() exits.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
