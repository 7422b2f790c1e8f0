// Package extractor turns raw page content into candidate postings.
// Extraction is total: malformed content yields an empty list, never an error.
package extractor

import (
	"context"
	"net/url"
	"strings"

	"github.com/campusnotify/noticecrawl/internal/domain"
)

// Page is one fetched page handed to an extractor.
type Page struct {
	// URL is the page address candidates' relative links resolve against.
	URL string
	// Content is the fetched body: HTML from the static strategy or
	// markdown from the render strategy.
	Content string
}

// Extractor produces candidate postings from a fetched page.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, page Page, profile domain.UserProfile) []domain.CandidatePosting
}

// resolveLink makes href absolute against the page URL. Returns "" when the
// href cannot be resolved; callers discard such candidates.
func resolveLink(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if !resolved.IsAbs() {
		return ""
	}
	return resolved.String()
}
