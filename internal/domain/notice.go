// Package domain defines the core entities shared across the notice pipeline.
package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TargetURL is a board or listing page a user wants monitored.
// Created by user configuration; read-only to the pipeline.
type TargetURL struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"userId"`
	URL    string `db:"target_url" json:"url"`
}

// UserProfile describes the user a crawl cycle runs for.
// Immutable during a pipeline run.
type UserProfile struct {
	Username       string   `json:"username"`
	PhoneNumber    string   `json:"phoneNumber"`
	School         string   `json:"school"`
	Major          string   `json:"major"`
	InterestFields []string `json:"interestFields"`
	IntervalDays   int      `json:"intervalDays"`
	AlarmTime      string   `json:"alarmTime"`
}

// ProfileText renders the natural-language profile handed to the relevance scorer.
// Returns "" when the profile carries nothing the scorer could use.
func (p UserProfile) ProfileText() string {
	var b strings.Builder
	if p.Username != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.Username)
	}
	if p.School != "" {
		fmt.Fprintf(&b, "School: %s\n", p.School)
	}
	if p.Major != "" {
		fmt.Fprintf(&b, "Major: %s\n", p.Major)
	}
	if len(p.InterestFields) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(p.InterestFields, ", "))
	}
	return strings.TrimSpace(b.String())
}

// LookbackDays returns the inclusive lookback window size in days.
// An unset interval defaults to 7 days.
func (p UserProfile) LookbackDays() int {
	if p.IntervalDays <= 0 {
		return DefaultLookbackDays
	}
	return p.IntervalDays
}

// DefaultLookbackDays is the lookback window applied when a profile has no interval.
const DefaultLookbackDays = 7

// CandidatePosting is a single posting produced by an extractor.
// Link is always an absolute URL; postings without a resolvable link are
// discarded at the extractor boundary, before scoring.
type CandidatePosting struct {
	Title    string     `json:"title"`
	Link     string     `json:"link"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	// Score is the extractor-emitted relevance estimate (0.0-1.0).
	// HasScore distinguishes a genuine 0.0 from "no score emitted".
	Score    float64 `json:"score,omitempty"`
	HasScore bool    `json:"-"`
}

// ScoreResult is the relevance scorer's verdict for one posting.
// Aligned is always set; every failure path resolves to false.
type ScoreResult struct {
	Aligned bool
	Reason  string
}

// ScoredPosting is a candidate posting plus the scorer's verdict.
type ScoredPosting struct {
	CandidatePosting
	Aligned bool   `json:"aligned"`
	Reason  string `json:"reason"`
}

// NotificationRecord is the persisted row for one surfaced posting.
// (UserID, OriginalURL) is unique per user; the only mutation after insert
// is flipping IsSent once the posting has been delivered.
type NotificationRecord struct {
	ID             string    `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"userId"`
	Title          string    `db:"title" json:"title"`
	Summary        string    `db:"summary" json:"summary"`
	SourceName     string    `db:"source_name" json:"sourceName"`
	OriginalURL    string    `db:"original_url" json:"originalUrl"`
	Category       string    `db:"category" json:"category"`
	RelevanceScore float64   `db:"relevance_score" json:"relevanceScore"`
	IsSent         bool      `db:"is_sent" json:"isSent"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// User is a configured notification recipient with monitored boards.
type User struct {
	ID          int64  `db:"user_id"`
	Username    string `db:"username"`
	PhoneNumber string `db:"phone_number"`
	School      string `db:"school"`
	Major       string `db:"major"`
	// Interests is a comma-separated tag list as stored.
	Interests    string `db:"interests"`
	IntervalDays int    `db:"interval_days"`
	// AlarmTime is the preferred delivery time-of-day, "HH:MM".
	AlarmTime string `db:"alarm_time"`

	TargetURLs []TargetURL `db:"-"`
}

// Profile converts the stored user row into its pipeline profile.
func (u User) Profile() UserProfile {
	var interests []string
	for _, tag := range strings.Split(u.Interests, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			interests = append(interests, tag)
		}
	}
	return UserProfile{
		Username:       u.Username,
		PhoneNumber:    u.PhoneNumber,
		School:         u.School,
		Major:          u.Major,
		InterestFields: interests,
		IntervalDays:   u.IntervalDays,
		AlarmTime:      u.AlarmTime,
	}
}

// knownSources maps domains to human-readable source names.
var knownSources = map[string]string{
	"korea.ac.kr":   "고려대학교 공지",
	"ewha.ac.kr":    "이화여자대학교 공지",
	"sogang.ac.kr":  "서강대학교 공지",
	"linkareer.com": "링커리어",
}

// SourceNameFor derives a readable source name from a page URL.
// Unknown domains fall back to the capitalized second-level domain.
func SourceNameFor(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	host := strings.ToLower(parsed.Hostname())
	for domain, name := range knownSources {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return name
		}
	}
	trimmed := strings.TrimPrefix(host, "www.")
	if idx := strings.Index(trimmed, "."); idx > 0 {
		trimmed = trimmed[:idx]
	}
	if trimmed == "" {
		return host
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}
