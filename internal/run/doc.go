// Package run persists packaging runs in SQLite and defines their lifecycle.
//
// A run tracks one episode folder from preflight classification through
// delivery. The Store manages connections, schema initialization, folder
// exclusivity (at most one non-terminal run per folder, enforced by a partial
// unique index), optimistic revision checks, heartbeat tracking, and the
// rollback transitions that return interrupted runs to the start of their
// phase. Phase output accumulates in a JSON state blob on the row, so a run
// suspended for human approval survives daemon restarts without losing work.
//
// Treat this package as the single source of truth for run semantics; when
// you add statuses or state fields, update schema.sql and bump schemaVersion.
package run
