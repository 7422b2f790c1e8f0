// Package scheduler drives the periodic crawl sweep and the per-minute
// dispatch tick with an in-process cron runner.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/pipeline"
)

// jobTimeout bounds one scheduled run so a hung sweep cannot pile up
// behind the next tick.
const jobTimeout = 30 * time.Minute

// Scheduler owns the cron runner and the two standing entries.
type Scheduler struct {
	cron    *cron.Cron
	service *pipeline.Service
	cfg     config.SchedulerConfig
	log     logger.Interface
}

// New creates a Scheduler in the given timezone. Each job runs under
// panic recovery so one failing sweep never kills the runner.
func New(service *pipeline.Service, cfg config.SchedulerConfig, loc *time.Location, log logger.Interface) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		service: service,
		cfg:     cfg,
		log:     log.WithComponent("scheduler"),
	}
}

// Start registers the crawl and dispatch entries and starts the runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CrawlSpec, s.runCrawl); err != nil {
		return fmt.Errorf("failed to register crawl schedule %q: %w", s.cfg.CrawlSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DispatchSpec, s.runDispatch); err != nil {
		return fmt.Errorf("failed to register dispatch schedule %q: %w", s.cfg.DispatchSpec, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		"crawl_spec", s.cfg.CrawlSpec,
		"dispatch_spec", s.cfg.DispatchSpec)
	return nil
}

// Stop halts the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runCrawl() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.service.CrawlAll(ctx)
	if err != nil {
		s.log.Error("scheduled crawl sweep failed", "error", err)
		return
	}
	s.log.Info("scheduled crawl sweep finished",
		"users", report.Users,
		"persisted", report.Persisted,
		"failed", report.Failed)
}

func (s *Scheduler) runDispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.service.DispatchDue(ctx, time.Now())
	if err != nil {
		s.log.Error("scheduled dispatch failed", "error", err)
		return
	}
	if report.Users > 0 {
		s.log.Info("scheduled dispatch finished", "users", report.Users, "sent", report.Sent)
	}
}
