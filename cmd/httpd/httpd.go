// Package httpd implements the long-running server command: HTTP API plus
// the in-process cron scheduler.
package httpd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusnotify/noticecrawl/cmd/common"
	"github.com/campusnotify/noticecrawl/internal/api"
	"github.com/campusnotify/noticecrawl/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Run the HTTP server and scheduler",
		Long:  "Serves the crawl and scheduler endpoints and runs the periodic crawl sweep and dispatch tick until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	deps, err := common.New()
	if err != nil {
		return err
	}
	defer deps.Close()

	handler := api.NewHandler(deps.Pipeline, deps.Service, deps.Notifications, deps.Logger)
	server := api.NewServer(deps.Config.Server, handler, deps.Logger)

	var sched *scheduler.Scheduler
	if deps.Config.Scheduler.Enabled {
		sched = scheduler.New(deps.Service, deps.Config.Scheduler, deps.Config.Location(), deps.Logger)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if sched != nil {
			sched.Stop()
		}
		return err
	case sig := <-sigChan:
		deps.Logger.Info("received shutdown signal", "signal", sig.String())
	}

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
