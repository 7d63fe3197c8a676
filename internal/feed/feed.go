package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"podcastdl/internal/config"
	"podcastdl/internal/logging"
)

// Episode describes one downloadable feed item. PublishedAt is the zero time
// when the feed did not carry a parseable date.
type Episode struct {
	Title       string
	PublishedAt time.Time
	MediaURL    string
	Description string
}

// Feed is the parsed result of one RSS document. Episodes are ordered oldest
// first; Dropped counts items that had no resolvable media URL.
type Feed struct {
	Title    string
	Episodes []Episode
	Dropped  int
}

// ErrEmptyFeed is returned when the document parses but contains no items.
var ErrEmptyFeed = errors.New("feed contains no episodes")

// HTTPDoer describes the HTTP client used to fetch the feed.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches and parses podcast feeds.
type Client struct {
	httpClient HTTPDoer
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// NewClient constructs a feed client from application config.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := 30 * time.Second
	userAgent := ""
	if cfg != nil {
		timeout = time.Duration(cfg.Feed.RequestTimeout) * time.Second
		userAgent = cfg.Download.UserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		userAgent:  userAgent,
		logger:     logger.With(logging.String(logging.FieldComponent, "feed")),
	}
}

// NewClientWithDoer constructs a feed client around an explicit HTTP doer.
// Used by tests to inject failures.
func NewClientWithDoer(doer HTTPDoer, userAgent string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		httpClient: doer,
		userAgent:  userAgent,
		logger:     logger.With(logging.String(logging.FieldComponent, "feed")),
	}
}

// Fetch retrieves feedURL and parses it into an oldest-first episode list.
func (c *Client) Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	if _, err := url.ParseRequestURI(feedURL); err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("fetching feed", logging.String("url", feedURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: server returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	parsed, err := Parse(body)
	if err != nil {
		return nil, err
	}

	if parsed.Dropped > 0 {
		c.logger.Warn("some feed items had no media url",
			logging.Int("dropped", parsed.Dropped),
			logging.String("feed", parsed.Title),
		)
	}
	c.logger.Info("feed fetched",
		logging.String("feed", parsed.Title),
		logging.Int("episodes", len(parsed.Episodes)),
	)
	return parsed, nil
}
