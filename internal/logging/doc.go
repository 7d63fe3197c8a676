// Package logging assembles the structured slog loggers used across
// podcastdl.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so download code tags log lines
// with episode titles and run IDs consistently. The package also provides a
// no-op logger for tests and a progress sampler that keeps per-episode byte
// progress from flooding the output.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
