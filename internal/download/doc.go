// Package download implements the concurrent episode download pipeline.
//
// The Orchestrator owns a bounded worker pool: episodes are dispatched in
// feed order, at most N run at once, and every episode produces exactly one
// Outcome regardless of how it finishes. A failed episode never aborts the
// run; cancellation stops new dispatch and records the remainder as failed.
//
// Each Worker handles one episode end to end: completion check, streaming
// download to a temporary file, metadata sidecar, atomic rename into place.
// A partial file is never visible at the final media path, and a published
// media file always has its sidecar beside it.
package download
