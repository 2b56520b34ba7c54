// Package tasks runs media ingestion jobs and records their progress.
//
// # Core Operations
//
// [Pipeline] exposes two entry points:
//
//  1. [Pipeline.ProcessVideo] : single video
//     - Extracts metadata from the video source
//     - Applies the duration window ([IsDurationValid], 2 to 8 minutes)
//     - Skips songs the catalog already knows
//     - Downloads audio and thumbnail, uploads both, publishes the song
//
//  2. [Pipeline.ProcessCollection] : a page (skip/limit) of a playlist or channel
//     - Lists the page from the video source
//     - Runs every item through the same stages, in order
//     - Counts each outcome; one failing item never aborts the batch
//     - Finishes with a success rate and {total, processed, successful}
//
// # Progress Reporting
//
// Every state transition is written to a [Tracker] (the job registry) as a partial update.
// Single-video jobs report each stage through detailed_status.
// Collection jobs report "Processing item i/N" with a progress marker and running counters.
// Pending is always derived from the outcome tallies, so it cannot drift.
//
// # Outcome Recording
//
// The optional [OutcomeRecorder] interface receives every item outcome.
// Recorder failures are logged at debug level and never change a job's result.
//
// # Background Execution
//
// [Dispatcher] runs each [Job] in its own goroutine, optionally bounded by a concurrency limit,
// and lets the server wait for in-flight jobs on shutdown.
package tasks
