// Package daemon hosts the long-running packwright process: it owns the
// workflow manager, enforces single-instance execution, and exposes the run
// control surface consumed over IPC.
package daemon
