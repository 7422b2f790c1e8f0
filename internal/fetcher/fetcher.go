// Package fetcher obtains raw page content for board URLs through an ordered
// fallback of acquisition strategies: a JS-rendering service first, then a
// plain HTTP GET.
package fetcher

import (
	"context"
	"errors"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// ErrNoContent is returned when every acquisition strategy has been exhausted.
// Callers skip the URL; this is never fatal for the batch.
var ErrNoContent = errors.New("no content obtainable for URL")

// Fetcher retrieves page content for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// FallbackFetcher tries the render strategy first and falls back to the
// static strategy when the result is missing or effectively empty.
type FallbackFetcher struct {
	render    Fetcher
	static    Fetcher
	minLength int
	log       logger.Interface
}

var _ Fetcher = (*FallbackFetcher)(nil)

// New builds the full fallback chain from configuration.
func New(cfg config.FetcherConfig, log logger.Interface) *FallbackFetcher {
	var render Fetcher
	if cfg.RenderURL != "" {
		render = NewRenderFetcher(cfg)
	}
	return &FallbackFetcher{
		render:    render,
		static:    NewStaticFetcher(cfg),
		minLength: cfg.MinContentLength,
		log:       log,
	}
}

// NewWithStrategies wires explicit strategies; used by tests.
func NewWithStrategies(render, static Fetcher, minLength int, log logger.Interface) *FallbackFetcher {
	return &FallbackFetcher{render: render, static: static, minLength: minLength, log: log}
}

// Fetch returns page content or ErrNoContent once both strategies failed.
// A render result shorter than the minimum content length is treated as
// effectively empty and triggers the static fallback.
func (f *FallbackFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.render != nil {
		content, err := f.render.Fetch(ctx, pageURL)
		if err == nil && len(content) >= f.minLength {
			return content, nil
		}
		if err != nil {
			f.log.Warn("render fetch failed, falling back to static", "url", pageURL, "error", err)
		} else {
			f.log.Warn("render fetch returned too little content, falling back to static",
				"url", pageURL, "length", len(content))
		}
	}

	content, err := f.static.Fetch(ctx, pageURL)
	if err != nil {
		f.log.Error("all fetch strategies failed", "url", pageURL, "error", err)
		return "", ErrNoContent
	}
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}
