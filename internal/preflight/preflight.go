// Package preflight validates the environment before a run dispatches any
// download, so obvious problems (unwritable output directory, nonsense feed
// URL) surface before network work begins.
package preflight

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"podcastdl/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config and feed URL.
func RunAll(cfg *config.Config, feedURL string) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckFeedURL(feedURL),
		CheckOutputDirectory(cfg.Paths.OutputDir),
	}
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// CheckFeedURL verifies that the feed URL is an absolute http(s) URL.
func CheckFeedURL(feedURL string) Result {
	const name = "Feed URL"
	trimmed := strings.TrimSpace(feedURL)
	if trimmed == "" {
		return Result{Name: name, Detail: "feed URL is required"}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", trimmed, err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: scheme must be http or https)", trimmed)}
	}
	if parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing host)", trimmed)}
	}
	return Result{Name: name, Passed: true, Detail: trimmed}
}

// CheckOutputDirectory verifies that the output directory either exists with
// read/write access or can be created under an accessible ancestor.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkCreatable(name, path)
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// checkCreatable walks up from path to the nearest existing ancestor and
// verifies it is writable, so MkdirAll will succeed later.
func checkCreatable(name, path string) Result {
	ancestor := path
	for {
		parent := parentDir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func parentDir(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}
