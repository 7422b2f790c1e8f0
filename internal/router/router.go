// Package router maps a target URL to its site-specific extraction strategy.
package router

import (
	"strings"

	"github.com/campusnotify/noticecrawl/internal/extractor"
)

// Strategy names used by the routing table.
const (
	strategyBoard = "board"
	strategyAI    = "ai"
)

// route is one entry of the static matching table.
type route struct {
	siteName string
	// prefix matches when the URL starts with it; substring matches anywhere.
	prefix    string
	substring string
	strategy  string
}

// routes is evaluated in order; first match wins. The university boards
// share the structural table layout; listing sites go straight to the
// generic extractor.
var routes = []route{
	{siteName: "korea_university", prefix: "https://info.korea.ac.kr/info/board/", strategy: strategyBoard},
	{siteName: "linkareer", prefix: "https://linkareer.com/", strategy: strategyAI},
	{siteName: "ewha_university", substring: "ewha.ac.kr", strategy: strategyBoard},
	{siteName: "sogang_university", substring: "sogang.ac.kr", strategy: strategyBoard},
}

// Router resolves a URL to an extraction strategy. URLs that match no known
// site fall back to the generic AI-assisted extractor, so every URL yields
// an extraction attempt.
type Router struct {
	board   extractor.Extractor
	generic extractor.Extractor
}

// New wires the site router with the structural and generic strategies.
func New(board, generic extractor.Extractor) *Router {
	return &Router{board: board, generic: generic}
}

// Resolve returns the matched site name and its extractor, or ("", generic)
// when no table entry matches.
func (r *Router) Resolve(url string) (string, extractor.Extractor) {
	for _, entry := range routes {
		if entry.prefix != "" && strings.HasPrefix(url, entry.prefix) {
			return entry.siteName, r.byStrategy(entry.strategy)
		}
		if entry.substring != "" && strings.Contains(url, entry.substring) {
			return entry.siteName, r.byStrategy(entry.strategy)
		}
	}
	return "", r.generic
}

func (r *Router) byStrategy(name string) extractor.Extractor {
	if name == strategyBoard {
		return r.board
	}
	return r.generic
}
