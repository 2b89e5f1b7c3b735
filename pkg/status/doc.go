// Package status assembles the operator-facing view of the watched
// service: a fresh three-signal probe, container detail from inspect,
// a log tail, and systemd's opinion of the vigil unit, rendered as a
// tabwriter table by `vigil status`.
//
// The reporter is read-only. It never triggers recovery and runs its
// own probe rather than sharing state with a monitor process, so the
// command gives an honest answer even when no monitor is running.
package status
