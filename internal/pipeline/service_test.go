package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/pipeline"
)

// fakeUserRepo serves a fixed user list and records alarm-time queries.
type fakeUserRepo struct {
	users    []domain.User
	gotHHMM  string
	listErr  error
	alarmErr error
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return f.users, f.listErr
}

func (f *fakeUserRepo) ListByAlarmTime(ctx context.Context, hhmm string) ([]domain.User, error) {
	f.gotHHMM = hhmm
	if f.alarmErr != nil {
		return nil, f.alarmErr
	}
	var matched []domain.User
	for _, u := range f.users {
		if u.AlarmTime == hhmm {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// countingDispatcher tallies per-user dispatches and can fail selected users.
type countingDispatcher struct {
	dispatched []int64
	failFor    map[int64]bool
}

func (d *countingDispatcher) DispatchUser(ctx context.Context, user domain.User) (int, error) {
	if d.failFor[user.ID] {
		return 0, errors.New("send failed")
	}
	d.dispatched = append(d.dispatched, user.ID)
	return 1, nil
}

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return loc
}

func newTestService(t *testing.T, users *fakeUserRepo, disp pipeline.UserDispatcher) *pipeline.Service {
	t.Helper()
	repo := newMemoryRepo()
	f := &stubFetcher{pages: map[string]string{boardURL: "content"}}
	candidates := []domain.CandidatePosting{
		{Title: "AI 채용 공지", Link: "https://info.korea.ac.kr/view?id=1"},
	}
	sc := &stubScorer{verdicts: map[string]bool{"AI 채용 공지": true}}
	p := newTestPipeline(repo, f, candidates, sc, config.PipelineConfig{}, nil)
	return pipeline.NewService(p, users, disp, seoul(t), logger.NewNoOp())
}

func TestDispatchDueMatchesAlarmTime(t *testing.T) {
	users := &fakeUserRepo{users: []domain.User{
		{ID: 1, AlarmTime: "09:00"},
		{ID: 2, AlarmTime: "21:30"},
	}}
	disp := &countingDispatcher{}
	svc := newTestService(t, users, disp)

	// 2026-03-10 00:00 UTC is 09:00 in Seoul.
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err := svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue() error = %v", err)
	}
	if users.gotHHMM != "09:00" {
		t.Errorf("queried alarm time %q, want 09:00 in service timezone", users.gotHHMM)
	}
	if report.Users != 1 || len(disp.dispatched) != 1 || disp.dispatched[0] != 1 {
		t.Errorf("report = %+v, dispatched = %v, want only user 1", report, disp.dispatched)
	}
}

func TestDispatchDueContinuesPastFailures(t *testing.T) {
	users := &fakeUserRepo{users: []domain.User{
		{ID: 1, AlarmTime: "09:00"},
		{ID: 2, AlarmTime: "09:00"},
		{ID: 3, AlarmTime: "09:00"},
	}}
	disp := &countingDispatcher{failFor: map[int64]bool{2: true}}
	svc := newTestService(t, users, disp)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err := svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue() error = %v", err)
	}
	if report.Sent != 2 {
		t.Errorf("sent = %d, want 2 despite user 2 failing", report.Sent)
	}
}

func TestCrawlAllSkipsUsersWithoutTargets(t *testing.T) {
	users := &fakeUserRepo{users: []domain.User{
		{ID: 1, Interests: "AI", TargetURLs: []domain.TargetURL{{ID: 10, UserID: 1, URL: boardURL}}},
		{ID: 2, Interests: "AI"},
	}}
	svc := newTestService(t, users, &countingDispatcher{})

	report, err := svc.CrawlAll(context.Background())
	if err != nil {
		t.Fatalf("CrawlAll() error = %v", err)
	}
	if report.Users != 1 {
		t.Errorf("crawled %d users, want 1 (user without targets skipped)", report.Users)
	}
	if report.Persisted != 1 {
		t.Errorf("persisted = %d, want 1", report.Persisted)
	}
}

func TestCrawlAllSurfacesListFailure(t *testing.T) {
	users := &fakeUserRepo{listErr: errors.New("db down")}
	svc := newTestService(t, users, &countingDispatcher{})

	if _, err := svc.CrawlAll(context.Background()); err == nil {
		t.Fatal("CrawlAll() should surface the user list failure")
	}
}
