package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// Service runs pipeline cycles across the configured user base. Both the
// HTTP scheduler endpoints and the cron runner delegate to it.
type Service struct {
	pipeline   *Pipeline
	users      database.UserRepositoryInterface
	dispatcher UserDispatcher
	loc        *time.Location
	log        logger.Interface
}

// NewService creates a Service.
func NewService(
	p *Pipeline,
	users database.UserRepositoryInterface,
	dispatcher UserDispatcher,
	loc *time.Location,
	log logger.Interface,
) *Service {
	return &Service{
		pipeline:   p,
		users:      users,
		dispatcher: dispatcher,
		loc:        loc,
		log:        log.WithComponent("service"),
	}
}

// SweepReport aggregates a crawl sweep over all users.
type SweepReport struct {
	Users     int `json:"users"`
	Persisted int `json:"persisted"`
	Failed    int `json:"failed"`
}

// DispatchReport aggregates one dispatch tick.
type DispatchReport struct {
	Users int `json:"users"`
	Sent  int `json:"sent"`
}

// CrawlUser runs one cycle for a stored user.
func (s *Service) CrawlUser(ctx context.Context, user domain.User) (Report, error) {
	urls := make([]string, 0, len(user.TargetURLs))
	for _, target := range user.TargetURLs {
		urls = append(urls, target.URL)
	}
	return s.pipeline.Run(ctx, CrawlRequest{
		UserID:     user.ID,
		TargetURLs: urls,
		Profile:    user.Profile(),
	})
}

// CrawlAll sweeps every user that has target URLs. A failing user is logged
// and skipped; the sweep itself only fails when the user list cannot be read.
func (s *Service) CrawlAll(ctx context.Context) (SweepReport, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed to list users: %w", err)
	}

	var report SweepReport
	for _, user := range users {
		if len(user.TargetURLs) == 0 {
			continue
		}
		report.Users++
		cycle, err := s.CrawlUser(ctx, user)
		if err != nil {
			report.Failed++
			s.log.Error("crawl failed for user", "user_id", user.ID, "error", err)
			continue
		}
		report.Persisted += cycle.Count
	}
	return report, nil
}

// DispatchDue sends pending notifications to every user whose alarm time
// matches the current time-of-day in the service timezone.
func (s *Service) DispatchDue(ctx context.Context, now time.Time) (DispatchReport, error) {
	hhmm := now.In(s.loc).Format("15:04")
	users, err := s.users.ListByAlarmTime(ctx, hhmm)
	if err != nil {
		return DispatchReport{}, fmt.Errorf("failed to list users for %s: %w", hhmm, err)
	}

	var report DispatchReport
	for _, user := range users {
		report.Users++
		sent, err := s.dispatcher.DispatchUser(ctx, user)
		if err != nil {
			s.log.Error("dispatch failed for user", "user_id", user.ID, "error", err)
			continue
		}
		report.Sent += sent
	}
	return report, nil
}
