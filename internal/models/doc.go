// Package models defines domain entities and persistence interfaces for the ytingest media ingestion service.
//
// The package contains three categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs describing media moving through the pipeline
//   - [VideoInfo] : Metadata for a single video, as reported by the video source
//   - [Song] : Payload registered with the song catalog
//
// 2. Task state: The in-memory job record exposed to polling clients
//   - [Task] : A job with status, counters, progress and result
//   - [Counters] : Per-outcome tallies merged key-by-key through [CounterPatch]
//   - [Phase] : Fine-grained step tag reported as detailed_status
//
// 3. Persistent Entities: Database-backed models
//   - [PublishedSong] : Ledger row recording the outcome of one processed video
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
