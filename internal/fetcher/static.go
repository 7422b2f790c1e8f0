package fetcher

import (
	"context"
	"fmt"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/campusnotify/noticecrawl/internal/config"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// StaticFetcher performs a plain HTTP GET with a browser-like User-Agent.
// It is the last-resort strategy; no retries beyond the single request.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
}

var _ Fetcher = (*StaticFetcher)(nil)

// NewStaticFetcher builds the static strategy from configuration.
func NewStaticFetcher(cfg config.FetcherConfig) *StaticFetcher {
	return &StaticFetcher{
		userAgent: cfg.UserAgent,
		timeout:   cfg.StaticTimeout,
	}
}

// Fetch GETs the page and returns the raw HTML. A fresh collector per call
// keeps fetches independent; the request timeout bounds the call.
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.MaxBodySize(maxResponseBodyBytes),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("static fetch of %s failed: %w", pageURL, err)
	}
	if fetchErr != nil {
		return "", fmt.Errorf("static fetch of %s failed: %w", pageURL, fetchErr)
	}
	return string(body), nil
}
