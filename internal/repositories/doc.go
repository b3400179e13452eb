// Package repositories implements SQLite persistence for the run journal.
//
// The journal is an audit log: each finished bulk operation becomes one run row with its per-card failures
// in run_errors. Board state is never stored, so every operation still starts from a live snapshot.
//
// Key Implementations:
//   - [RunRepository] : Run persistence with soft deletes and operation/board filters
//   - [RunJournal] : Converts a [tasks.Result] into a stored run
//
// Sequence numbers provide stable, human-readable run numbers (e.g., run #42) independent of UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
