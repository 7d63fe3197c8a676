// Package ledger persists a summary of each completed run in SQLite.
//
// The ledger is purely informational: `podcastdl history` reads it, nothing
// else does. Skip decisions always come from the files on disk, so deleting
// the database loses nothing but the report. Schema changes bump the version
// in schema.go; the table is rebuilt rather than migrated.
package ledger
