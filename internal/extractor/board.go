package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// boardDateLayout is the posting date format used by the supported
// university boards ("2024.03.15").
const boardDateLayout = "2006.01.02"

// BoardExtractor parses university board tables structurally: one posting
// per table row, the trailing cell holding the posting date, the title link
// carrying an "article-title" class.
type BoardExtractor struct {
	loc *time.Location
	now func() time.Time
	log logger.Interface
}

var _ Extractor = (*BoardExtractor)(nil)

// NewBoardExtractor wires the board parser with the service timezone.
func NewBoardExtractor(loc *time.Location, log logger.Interface) *BoardExtractor {
	return &BoardExtractor{loc: loc, now: time.Now, log: log}
}

// Name identifies the strategy for the router.
func (e *BoardExtractor) Name() string {
	return "board"
}

// Extract walks table rows and keeps postings dated within the lookback
// window: today back to today-(intervalDays-1), inclusive. Rows without a
// parseable date or a resolvable title link are skipped.
func (e *BoardExtractor) Extract(_ context.Context, page Page, profile domain.UserProfile) []domain.CandidatePosting {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Content))
	if err != nil {
		e.log.Warn("board page not parseable", "url", page.URL, "error", err)
		return nil
	}

	today := e.now().In(e.loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, e.loc)
	cutoff := today.AddDate(0, 0, -(profile.LookbackDays() - 1))

	var postings []domain.CandidatePosting
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		dateText := strings.TrimSpace(cells.Last().Text())
		postedAt, parseErr := time.ParseInLocation(boardDateLayout, dateText, e.loc)
		if parseErr != nil {
			return
		}
		if postedAt.Before(cutoff) {
			return
		}

		link := row.Find("a.article-title").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		// Some boards double-escape query separators in hrefs.
		href = strings.ReplaceAll(href, "amp;", "")
		absolute := resolveLink(page.URL, href)
		if absolute == "" {
			return
		}

		postings = append(postings, domain.CandidatePosting{
			Title:    strings.TrimSpace(link.Text()),
			Link:     absolute,
			PostedAt: &postedAt,
		})
	})

	return postings
}
