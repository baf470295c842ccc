package models

import (
	"strings"
	"time"
)

// RemovedTitle is the placeholder title news APIs use for withdrawn articles.
const RemovedTitle = "[Removed]"

// Article is a single news article returned by a news source.
// Any of Title, Description and Content may be empty.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Text returns the scorable text of the article: title, description and
// content joined with separators. Missing parts are skipped.
func (a Article) Text() string {
	title := strings.TrimSpace(a.Title)
	rest := strings.TrimSpace(strings.TrimSpace(a.Description) + " " + strings.TrimSpace(a.Content))

	switch {
	case title == "":
		return rest
	case rest == "":
		return title
	default:
		return title + ". " + rest
	}
}

// Removed reports whether the article was withdrawn by its publisher or has no title.
func (a Article) Removed() bool {
	t := strings.TrimSpace(a.Title)
	return t == "" || t == RemovedTitle
}
