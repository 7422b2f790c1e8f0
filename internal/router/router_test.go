package router_test

import (
	"context"
	"testing"

	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/extractor"
	"github.com/campusnotify/noticecrawl/internal/router"
)

type namedExtractor struct {
	name string
}

func (e *namedExtractor) Name() string { return e.name }

func (e *namedExtractor) Extract(context.Context, extractor.Page, domain.UserProfile) []domain.CandidatePosting {
	return nil
}

func TestResolve(t *testing.T) {
	board := &namedExtractor{name: "board"}
	generic := &namedExtractor{name: "ai"}
	r := router.New(board, generic)

	tests := []struct {
		url      string
		wantSite string
		wantName string
	}{
		{"https://info.korea.ac.kr/info/board/news.do", "korea_university", "board"},
		{"https://linkareer.com/list/intern", "linkareer", "ai"},
		{"https://www.ewha.ac.kr/ewha/news/notice.do", "ewha_university", "board"},
		{"https://scc.sogang.ac.kr/scc/notice.do", "sogang_university", "board"},
		{"https://unknown.example.com/board", "", "ai"},
	}
	for _, tt := range tests {
		site, ex := r.Resolve(tt.url)
		if site != tt.wantSite {
			t.Errorf("Resolve(%q) site = %q, want %q", tt.url, site, tt.wantSite)
		}
		if ex.Name() != tt.wantName {
			t.Errorf("Resolve(%q) extractor = %q, want %q", tt.url, ex.Name(), tt.wantName)
		}
	}
}

func TestResolvePrefixBeatsSubstring(t *testing.T) {
	board := &namedExtractor{name: "board"}
	generic := &namedExtractor{name: "ai"}
	r := router.New(board, generic)

	// A Korea University URL outside the info board path has no prefix match
	// and no substring entry, so it falls back to the generic extractor.
	site, ex := r.Resolve("https://korea.ac.kr/other/page")
	if site != "" || ex.Name() != "ai" {
		t.Errorf("Resolve() = (%q, %q), want fallback to generic", site, ex.Name())
	}
}
