package domain

import (
	"strings"
	"testing"
)

func TestProfileText(t *testing.T) {
	profile := UserProfile{
		Username:       "지민",
		School:         "고려대학교",
		Major:          "컴퓨터학과",
		InterestFields: []string{"AI", "백엔드"},
	}

	text := profile.ProfileText()
	for _, want := range []string{"지민", "고려대학교", "컴퓨터학과", "AI, 백엔드"} {
		if !strings.Contains(text, want) {
			t.Errorf("profile text missing %q:\n%s", want, text)
		}
	}
}

func TestProfileTextEmpty(t *testing.T) {
	if got := (UserProfile{}).ProfileText(); got != "" {
		t.Errorf("empty profile rendered %q, want empty", got)
	}
}

func TestLookbackDays(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		want     int
	}{
		{"explicit interval", 3, 3},
		{"zero defaults", 0, DefaultLookbackDays},
		{"negative defaults", -1, DefaultLookbackDays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := UserProfile{IntervalDays: tt.interval}
			if got := p.LookbackDays(); got != tt.want {
				t.Errorf("LookbackDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserProfileSplitsInterests(t *testing.T) {
	user := User{Interests: "AI, 장학금 , ,취업"}
	profile := user.Profile()

	want := []string{"AI", "장학금", "취업"}
	if len(profile.InterestFields) != len(want) {
		t.Fatalf("got %d interests, want %d: %v", len(profile.InterestFields), len(want), profile.InterestFields)
	}
	for i, tag := range want {
		if profile.InterestFields[i] != tag {
			t.Errorf("interest[%d] = %q, want %q", i, profile.InterestFields[i], tag)
		}
	}
}

func TestSourceNameFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://info.korea.ac.kr/info/board/news.do", "고려대학교 공지"},
		{"https://www.ewha.ac.kr/ewha/news/notice.do", "이화여자대학교 공지"},
		{"https://linkareer.com/list/intern", "링커리어"},
		{"https://www.example.com/board", "Example"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := SourceNameFor(tt.url); got != tt.want {
			t.Errorf("SourceNameFor(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
