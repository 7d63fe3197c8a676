// Package naming derives target filesystem paths for episodes.
//
// Resolution is a pure function of the episode descriptor and the output
// directory: the same episode always maps to the same paths, and the date
// prefix keeps same-titled episodes from colliding.
package naming

import (
	"net/url"
	"path"
	"path/filepath"
	"time"

	"podcastdl/internal/feed"
	"podcastdl/internal/textutil"
)

// TargetPaths holds the media file and metadata sidecar locations for one
// episode. PartialPath is the temporary download target in the same
// directory, so the final rename stays on one filesystem.
type TargetPaths struct {
	MediaPath    string
	MetadataPath string
	PartialPath  string
}

const (
	datePrefixLayout = "2006-01-02"
	noDatePrefix     = "nodate"
	fallbackExt      = ".mp3"
	partialSuffix    = ".partial"
)

// Resolve derives the target paths for an episode inside dir.
//
// Filenames take the form "<YYYY-MM-DD> - <SanitizedTitle><ext>"; the sidecar
// swaps the extension for .txt. The extension comes from the media URL path
// with an .mp3 fallback when the URL yields none or an implausible one.
func Resolve(episode feed.Episode, dir string) TargetPaths {
	base := DatePrefix(episode.PublishedAt) + " - " + textutil.SanitizeFileName(episode.Title)
	mediaPath := filepath.Join(dir, base+mediaExtension(episode.MediaURL))
	return TargetPaths{
		MediaPath:    mediaPath,
		MetadataPath: filepath.Join(dir, base+".txt"),
		PartialPath:  mediaPath + partialSuffix,
	}
}

// DatePrefix renders the filename date prefix for a publish date. The zero
// time renders as "nodate".
func DatePrefix(published time.Time) string {
	if published.IsZero() {
		return noDatePrefix
	}
	return published.UTC().Format(datePrefixLayout)
}

// mediaExtension extracts the file extension from a media URL, ignoring any
// query string. Extensions shorter than 2 or longer than 5 characters
// (including the dot) fall back to .mp3, matching what podcast CDNs serve in
// practice.
func mediaExtension(mediaURL string) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return fallbackExt
	}
	ext := path.Ext(parsed.Path)
	if len(ext) < 2 || len(ext) > 5 {
		return fallbackExt
	}
	return ext
}
