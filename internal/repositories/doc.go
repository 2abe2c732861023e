// Package repositories implements SQLite persistence for extraction history.
//
// [RunRepository] stores one row per finished run in the runs table and the selected entries, in
// selection order, in run_paths. Runs are soft deleted via deleted_at and excluded from queries by
// default.
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and
// creation timestamps. [NextSequence] atomically increments the counter in runs_sequence.
package repositories
