// Package tasks reconciles a local inventory against a remote record collection with real-time progress reporting.
//
// # Core Operations
//
// [Engine] runs a sync in three steps:
//
//  1. [Engine.FetchSnapshot] : Read the remote collection once
//     - The resulting [Snapshot] is the "already uploaded" membership set for the whole run
//     - It is never refreshed, so uploads finishing mid-run do not change skip decisions
//
//  2. [Engine.DeleteAll] : Optionally clear the collection
//     - One delete per release instance, fanned out concurrently
//     - Every delete finishes before any upload starts
//     - Failures are reported, never retried
//
//  3. [Engine.UploadAll] : Add each local record
//     - Records already in the snapshot are skipped unless the collection was cleared first
//     - A rate-limited add waits the retry delay and tries again, up to the attempt cap
//     - Any other non-201 answer or a transport error fails the record without retrying
//
// [Engine.Sync] composes steps 2 and 3 and aggregates a [RunResult].
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] persists the run and each record outcome.
// Recorder errors are logged and never fail the sync.
package tasks
