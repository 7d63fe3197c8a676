package feed

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// audioLinkExtensions marks <link> values that point straight at media.
var audioLinkExtensions = []string{".mp3", ".m4a", ".ogg", ".wav", ".aac"}

// Parse decodes an RSS or Atom document into a Feed with episodes sorted
// oldest first. Items without a resolvable media URL are dropped and counted.
func Parse(data []byte) (*Feed, error) {
	doc, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w (feed title %q)", ErrEmptyFeed, strings.TrimSpace(doc.Title))
	}

	result := &Feed{Title: strings.TrimSpace(doc.Title)}
	for i, item := range doc.Items {
		if item == nil {
			continue
		}
		mediaURL := resolveMediaURL(item)
		if mediaURL == "" {
			result.Dropped++
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = fmt.Sprintf("Untitled Episode %d", i+1)
		}
		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		result.Episodes = append(result.Episodes, Episode{
			Title:       title,
			PublishedAt: published,
			MediaURL:    mediaURL,
			Description: strings.TrimSpace(item.Description),
		})
	}

	// Oldest first; items without dates sort before everything else. The
	// stable sort keeps feed order for equal dates.
	sort.SliceStable(result.Episodes, func(a, b int) bool {
		return result.Episodes[a].PublishedAt.Before(result.Episodes[b].PublishedAt)
	})

	return result, nil
}

// resolveMediaURL prefers an audio enclosure, falls back to the first
// enclosure, and finally accepts <link> when it points at an audio file.
func resolveMediaURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(enc.Type)), "audio") && enc.URL != "" {
			return enc.URL
		}
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	link := strings.TrimSpace(item.Link)
	lowered := strings.ToLower(link)
	for _, ext := range audioLinkExtensions {
		if strings.HasSuffix(lowered, ext) {
			return link
		}
	}
	return ""
}
