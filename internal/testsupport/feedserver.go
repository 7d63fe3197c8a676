package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// FeedEpisode describes one item served by FeedServer.
type FeedEpisode struct {
	Title   string
	PubDate string
	Path    string
	Body    string
	Status  int
}

// FeedServer starts an HTTP server that serves an RSS document at /feed.xml
// and each episode's media at its Path. The server shuts down with the test.
func FeedServer(t testing.TB, showTitle string, episodes []FeedEpisode) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var items strings.Builder
	for _, episode := range episodes {
		episode := episode
		status := episode.Status
		if status == 0 {
			status = http.StatusOK
		}
		mux.HandleFunc(episode.Path, func(w http.ResponseWriter, r *http.Request) {
			if status != http.StatusOK {
				http.Error(w, http.StatusText(status), status)
				return
			}
			_, _ = w.Write([]byte(episode.Body))
		})
		fmt.Fprintf(&items, `
    <item>
      <title>%s</title>
      <pubDate>%s</pubDate>
      <enclosure url="{{base}}%s" type="audio/mpeg"/>
    </item>`, episode.Title, episode.PubDate, episode.Path)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>%s</title>%s
  </channel>
</rss>`, showTitle, strings.ReplaceAll(items.String(), "{{base}}", server.URL))

	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(doc))
	})

	return server
}
