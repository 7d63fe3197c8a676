// Package textutil provides text processing utilities for filename
// sanitization.
//
// Episode and podcast titles arrive from arbitrary RSS feeds and routinely
// contain characters that are illegal or surprising in filesystem paths. The
// sanitizers here normalize titles to NFC, replace or strip unsafe
// characters, and collapse whitespace so derived filenames are stable across
// runs and platforms.
package textutil
