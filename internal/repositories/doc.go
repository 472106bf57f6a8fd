// Package repositories implements SQLite persistence for sync history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Runs support soft deletes via deleted_at timestamps and deleted runs are excluded from queries by default.
//
// Key Implementations:
//   - [SyncRunRepository] : One row per sync invocation with status and tally
//   - [OutcomeRepository] : Append-only per-record results linked to a run
//   - [HistoryRecorder] : Adapter the sync engine writes through
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
