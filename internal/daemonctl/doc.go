// Package daemonctl orchestrates the daemon process from the CLI: launching
// it detached, waiting for its socket, and stopping or restarting it.
package daemonctl
