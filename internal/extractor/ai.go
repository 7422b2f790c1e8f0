package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"

	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/llm"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// maxPromptContentLength caps how much page text is embedded in the
// extraction prompt.
const maxPromptContentLength = 15000

// aiSystemPrompt instructs the reasoning service to emit a JSON array only.
const aiSystemPrompt = "You are a webpage analysis expert. Find the list of notices or postings " +
	"in the provided text and return them as a JSON array only, no prose."

// AIExtractor delegates extraction of arbitrary pages to the reasoning
// service. It is the generic fallback for sites without a structural parser.
type AIExtractor struct {
	completer llm.Completer
	log       logger.Interface
}

var _ Extractor = (*AIExtractor)(nil)

// NewAIExtractor wires the generic extraction strategy. A nil completer
// yields an extractor that always returns no candidates.
func NewAIExtractor(completer llm.Completer, log logger.Interface) *AIExtractor {
	return &AIExtractor{completer: completer, log: log}
}

// Name identifies the strategy for the router.
func (e *AIExtractor) Name() string {
	return "ai"
}

// aiItem is one posting as emitted by the reasoning service.
type aiItem struct {
	Title   string  `mapstructure:"title"`
	Link    string  `mapstructure:"link"`
	Score   float64 `mapstructure:"score"`
	Summary string  `mapstructure:"summary"`
}

// Extract asks the reasoning service for a JSON array of postings and
// defensively parses the reply. Any failure yields an empty list.
func (e *AIExtractor) Extract(ctx context.Context, page Page, profile domain.UserProfile) []domain.CandidatePosting {
	if e.completer == nil {
		return nil
	}

	content := page.Content
	if looksLikeHTML(content) {
		content = htmlToText(content)
	}
	if len(content) > maxPromptContentLength {
		content = content[:maxPromptContentLength]
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	prompt := buildExtractionPrompt(content, profile.InterestFields)
	answer, err := e.completer.Complete(ctx, aiSystemPrompt, prompt)
	if err != nil {
		e.log.Warn("AI extraction failed", "url", page.URL, "error", err)
		return nil
	}

	items := parseItems(answer)
	if len(items) == 0 {
		e.log.Debug("AI extraction yielded no items", "url", page.URL)
		return nil
	}

	postings := make([]domain.CandidatePosting, 0, len(items))
	for _, item := range items {
		link := resolveLink(page.URL, item.decoded.Link)
		title := strings.TrimSpace(item.decoded.Title)
		if title == "" || link == "" {
			continue
		}
		postings = append(postings, domain.CandidatePosting{
			Title:    title,
			Link:     link,
			Summary:  strings.TrimSpace(item.decoded.Summary),
			Score:    item.decoded.Score,
			HasScore: item.hasScore,
		})
	}
	return postings
}

// buildExtractionPrompt embeds the user's interest tags and the page text.
func buildExtractionPrompt(content string, interests []string) string {
	return fmt.Sprintf(`Extract the notice postings from the text below.
User interests: %s

Respond with a JSON array only, in this shape:
[
  {"title": "posting title", "link": "absolute or relative URL", "score": 0.0, "summary": "one sentence focused on the user's interests"}
]
score is your 0.0-1.0 estimate of relevance to the user's interests.

Text:
%s`, strings.Join(interests, ", "), content)
}

// parsedItem pairs the decoded posting with raw-key metadata.
type parsedItem struct {
	decoded  aiItem
	hasScore bool
}

// parseItems extracts the first bracketed JSON array from the response and
// decodes each object, tolerating link/url/originalUrl key aliases and
// loosely typed score values. Malformed responses yield nil.
func parseItems(answer string) []parsedItem {
	raw := firstJSONArray(answer)
	if raw == "" {
		return nil
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	items := make([]parsedItem, 0, len(entries))
	for _, entry := range entries {
		normalized := normalizeKeys(entry)

		var item aiItem
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &item,
			WeaklyTypedInput: true,
		})
		if err != nil || decoder.Decode(normalized) != nil {
			continue
		}

		_, hasScore := normalized["score"]
		items = append(items, parsedItem{decoded: item, hasScore: hasScore})
	}
	return items
}

// normalizeKeys maps observed key aliases onto the canonical field names so
// alias-guessing never propagates past the extractor boundary.
func normalizeKeys(entry map[string]any) map[string]any {
	normalized := make(map[string]any, len(entry))
	for key, value := range entry {
		switch strings.ToLower(key) {
		case "link", "url", "originalurl", "href":
			if _, exists := normalized["link"]; !exists {
				normalized["link"] = value
			}
		default:
			normalized[strings.ToLower(key)] = value
		}
	}
	return normalized
}

// firstJSONArray returns the first well-formed bracketed array substring.
// Bracket depth is tracked outside string literals so nested arrays and
// brackets inside titles do not truncate the match.
func firstJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// looksLikeHTML reports whether the content is markup rather than text.
func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<") {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Contains(lower, "<table")
}

// htmlToText strips markup down to readable text for the prompt.
func htmlToText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
