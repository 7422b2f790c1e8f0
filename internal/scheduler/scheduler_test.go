package scheduler_test

import (
	"testing"
	"time"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/logger"
	"github.com/campusnotify/noticecrawl/internal/pipeline"
	"github.com/campusnotify/noticecrawl/internal/scheduler"
)

func TestStartRejectsInvalidSpec(t *testing.T) {
	cfg := config.SchedulerConfig{CrawlSpec: "not a cron spec", DispatchSpec: "* * * * *"}
	s := scheduler.New(&pipeline.Service{}, cfg, time.UTC, logger.NewNoOp())

	if err := s.Start(); err == nil {
		t.Fatal("Start() should reject an invalid cron spec")
	}
}

func TestStartAndStop(t *testing.T) {
	cfg := config.SchedulerConfig{CrawlSpec: "0 * * * *", DispatchSpec: "* * * * *"}
	s := scheduler.New(&pipeline.Service{}, cfg, time.UTC, logger.NewNoOp())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}
