// Package api defines the transport DTOs shared by the IPC surface and the
// CLI, plus conversions from internal run records.
package api
