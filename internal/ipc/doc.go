// Package ipc provides the JSON-RPC control channel between the packwright
// CLI and the daemon over a Unix domain socket.
package ipc
