// Package approval implements the durable human checkpoints: re-package
// confirmation and title selection. Runs suspend until an explicit decision
// or cancellation; there is no timeout.
package approval
