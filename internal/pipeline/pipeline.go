// Package pipeline orchestrates one crawl cycle: fetch each target board,
// extract candidate postings, score them against the user profile, and
// persist the aligned ones exactly once.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/extractor"
	"github.com/campusnotify/noticecrawl/internal/fetcher"
	"github.com/campusnotify/noticecrawl/internal/llm"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/router"
	"github.com/campusnotify/noticecrawl/internal/scorer"
)

// Cycle outcome statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusSkipped = "SKIPPED"
	StatusError   = "ERROR"
)

// maxSummaryContentLength caps how much detail-page content goes into the
// summarization prompt.
const maxSummaryContentLength = 8000

// summaryFallback is stored when the deep-crawl pass cannot produce a summary.
const summaryFallback = "요약을 생성하지 못했습니다."

const summarySystemPrompt = "You summarize Korean university notices. " +
	"Respond with exactly one Korean sentence and nothing else."

// callbackTimeout bounds the best-effort result delivery to the caller.
const callbackTimeout = 10 * time.Second

// CrawlRequest describes one cycle: whose profile to score against and
// which boards to sweep.
type CrawlRequest struct {
	UserID     int64              `json:"userId"`
	TargetURLs []string           `json:"targetUrls"`
	Profile    domain.UserProfile `json:"userProfile"`
	Callback   *Callback          `json:"callback,omitempty"`
}

// Callback is an optional post-cycle delivery target for the persisted records.
type Callback struct {
	Enabled   bool   `json:"enabled"`
	URL       string `json:"callbackUrl"`
	AuthToken string `json:"authToken,omitempty"`
}

// Report is the outcome of one cycle. Count is the number of records the
// store actually accepted, after both dedup passes.
type Report struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// UserDispatcher sends a user's pending notifications.
type UserDispatcher interface {
	DispatchUser(ctx context.Context, user domain.User) (int, error)
}

// Pipeline wires the crawl stages together. Stages run sequentially; a
// failing URL is skipped without aborting the cycle, and only a store
// failure surfaces as the cycle error.
type Pipeline struct {
	fetcher       fetcher.Fetcher
	router        *router.Router
	scorer        scorer.Scorer
	completer     llm.Completer
	notifications database.NotificationRepositoryInterface
	dispatcher    UserDispatcher

	threshold          float64
	deepCrawl          bool
	dispatchAfterCrawl bool

	httpClient *http.Client
	log        logger.Interface
}

// New creates a Pipeline. completer may be nil when the reasoning service is
// disabled; the deep-crawl pass then falls back to the placeholder summary.
// dispatcher may be nil when dispatch_after_crawl is off.
func New(
	f fetcher.Fetcher,
	rt *router.Router,
	sc scorer.Scorer,
	completer llm.Completer,
	notifications database.NotificationRepositoryInterface,
	dispatcher UserDispatcher,
	cfg config.PipelineConfig,
	log logger.Interface,
) *Pipeline {
	return &Pipeline{
		fetcher:            f,
		router:             rt,
		scorer:             sc,
		completer:          completer,
		notifications:      notifications,
		dispatcher:         dispatcher,
		threshold:          cfg.RelevanceThreshold,
		deepCrawl:          cfg.DeepCrawl,
		dispatchAfterCrawl: cfg.DispatchAfterCrawl,
		httpClient:         &http.Client{Timeout: callbackTimeout},
		log:                log.WithComponent("pipeline"),
	}
}

// Run executes one crawl cycle for one user.
func (p *Pipeline) Run(ctx context.Context, req CrawlRequest) (Report, error) {
	log := p.log.WithUser(req.UserID)
	if len(req.TargetURLs) == 0 {
		log.Info("no target urls, nothing to crawl")
		return Report{Status: StatusSkipped}, nil
	}

	known, err := p.notifications.ListKnownURLs(ctx, req.UserID)
	if err != nil {
		return Report{Status: StatusError}, fmt.Errorf("failed to load known urls: %w", err)
	}

	profileText := req.Profile.ProfileText()
	var records []domain.NotificationRecord
	fetched := 0

	for _, pageURL := range req.TargetURLs {
		content, err := p.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			log.Warn("skipping url without content", "url", pageURL, "error", err)
			continue
		}
		fetched++

		site, ex := p.router.Resolve(pageURL)
		candidates := ex.Extract(ctx, extractor.Page{URL: pageURL, Content: content}, req.Profile)
		log.Info("extracted candidates",
			"url", pageURL,
			"site", site,
			"extractor", ex.Name(),
			"count", len(candidates))

		for _, cand := range candidates {
			verdict := p.scorer.Score(ctx, profileText, cand.Title, cand.Link)
			if !verdict.Aligned {
				log.Debug("dropped posting", "title", cand.Title, "reason", verdict.Reason)
				continue
			}
			if _, seen := known[cand.Link]; seen {
				continue
			}
			known[cand.Link] = struct{}{}

			summary := cand.Summary
			if p.deepCrawl && cand.HasScore && cand.Score >= p.threshold {
				summary = p.summarize(ctx, cand)
			}

			records = append(records, domain.NotificationRecord{
				UserID:         req.UserID,
				Title:          cand.Title,
				Summary:        summary,
				SourceName:     domain.SourceNameFor(cand.Link),
				OriginalURL:    cand.Link,
				Category:       site,
				RelevanceScore: cand.Score,
			})
		}
	}

	count := 0
	if len(records) > 0 {
		count, err = p.notifications.InsertBatch(ctx, records)
		if err != nil {
			return Report{Status: StatusError}, fmt.Errorf("failed to persist notifications: %w", err)
		}
	}

	if req.Callback != nil && req.Callback.Enabled && req.Callback.URL != "" {
		p.deliverCallback(ctx, req, records)
	}

	if p.dispatchAfterCrawl && p.dispatcher != nil {
		user := domain.User{
			ID:          req.UserID,
			Username:    req.Profile.Username,
			PhoneNumber: req.Profile.PhoneNumber,
		}
		if _, err := p.dispatcher.DispatchUser(ctx, user); err != nil {
			log.Error("post-crawl dispatch failed", "error", err)
		}
	}

	status := StatusSuccess
	if fetched == 0 {
		status = StatusSkipped
	}
	log.Info("crawl cycle finished", "status", status, "persisted", count)
	return Report{Status: status, Count: count}, nil
}

// summarize fetches the posting's detail page and asks the reasoning service
// for a one-sentence summary. Best-effort: any failure yields the placeholder
// and the posting is kept.
func (p *Pipeline) summarize(ctx context.Context, cand domain.CandidatePosting) string {
	if p.completer == nil {
		if cand.Summary != "" {
			return cand.Summary
		}
		return summaryFallback
	}

	content, err := p.fetcher.Fetch(ctx, cand.Link)
	if err != nil {
		p.log.Debug("deep crawl fetch failed", "link", cand.Link, "error", err)
		return summaryFallback
	}
	if len(content) > maxSummaryContentLength {
		content = content[:maxSummaryContentLength]
	}

	prompt := fmt.Sprintf("Title: %s\n\nContent:\n%s", cand.Title, content)
	answer, err := p.completer.Complete(ctx, summarySystemPrompt, prompt)
	if err != nil {
		p.log.Debug("deep crawl summary failed", "link", cand.Link, "error", err)
		return summaryFallback
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return summaryFallback
	}
	return answer
}
