// Package daemonrun bootstraps the daemon process: logging, PID and lock
// files, stores, phase wiring, and the IPC server.
package daemonrun
