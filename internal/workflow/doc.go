// Package workflow advances packaging runs through the configured phases.
//
// The Manager polls the run store, reclaims stale work via heartbeats, and
// feeds runs into registered phase handlers (classifier, archiver,
// discoverer, analyzer, author, organizer, deliverer) while capturing failure
// metadata. Suspended runs are never polled; they resume only through the
// approval gate. The manager also aggregates run stats, calls phase health
// checks, and emits lifecycle notifications.
//
// Add new lifecycle phases by extending PhaseSet, updating the run status
// enums, and teaching the manager how to transition runs; this package is the
// authoritative home for that coordination logic.
package workflow
