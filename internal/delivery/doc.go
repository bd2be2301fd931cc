// Package delivery builds the final human-readable summary of a run from
// its ordered file operation log.
package delivery
