// Package feed fetches a podcast RSS feed and turns it into an ordered list
// of episode descriptors.
//
// Parsing delegates to gofeed, which absorbs the usual real-world
// sloppiness: RSS and Atom variants, several pubDate formats, non-UTF-8
// charsets, and missing enclosure types. This package layers the policy on
// top: audio-enclosure preference, <link> fallback for items whose only
// media reference is the link element, and an oldest-first ordering. Items
// with no resolvable media URL are dropped and counted.
//
// Feed failures are fatal to a run. They are reported before any download is
// dispatched, so a bad URL or malformed XML never produces partial output.
package feed
