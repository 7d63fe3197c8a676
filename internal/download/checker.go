package download

import (
	"context"
	"net/http"
	"os"
)

// HTTPDoer describes the HTTP client used by the download pipeline.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker decides whether an episode's media file is already complete on
// disk, so the worker can skip the transfer entirely.
type Checker struct {
	client    HTTPDoer
	userAgent string
}

// NewChecker constructs a completion checker. A nil client disables the
// remote size comparison and falls back to the existence heuristic.
func NewChecker(client HTTPDoer, userAgent string) *Checker {
	return &Checker{client: client, userAgent: userAgent}
}

// Complete reports whether mediaPath already holds a finished download of
// mediaURL.
//
// The file must exist with non-zero size. When the remote advertises a
// Content-Length on a lightweight HEAD request, the sizes must also match;
// a mismatch means an interrupted earlier run (from before atomic renames)
// or a re-published episode, and forces a re-download. HEAD failures are
// tolerated: many podcast CDNs reject HEAD, and existence plus non-zero
// size is the accepted heuristic then.
func (c *Checker) Complete(ctx context.Context, mediaURL, mediaPath string) bool {
	info, err := os.Stat(mediaPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}

	expected := c.remoteLength(ctx, mediaURL)
	if expected > 0 && expected != info.Size() {
		return false
	}
	return true
}

func (c *Checker) remoteLength(ctx context.Context, mediaURL string) int64 {
	if c.client == nil {
		return 0
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return 0
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0
	}
	return resp.ContentLength
}
