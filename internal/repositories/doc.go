// Package repositories implements SQLite persistence for the ingestion ledger.
//
// Key Implementations:
//   - [SongRepository] : one row per video outcome, queryable by task, video and outcome
//   - [SongLedger] : adapts [SongRepository] to the pipeline's outcome recorder
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
