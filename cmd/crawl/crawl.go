// Package crawl implements the one-shot crawl command.
package crawl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusnotify/noticecrawl/cmd/common"
)

// Command returns the crawl command. With --user it runs one cycle for that
// user; without it, a full sweep over every user with target URLs.
func Command() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), userID)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "crawl only this user ID")
	return cmd
}

func run(ctx context.Context, userID int64) error {
	deps, err := common.New()
	if err != nil {
		return err
	}
	defer deps.Close()

	if userID == 0 {
		report, err := deps.Service.CrawlAll(ctx)
		if err != nil {
			return err
		}
		deps.Logger.Info("sweep finished",
			"users", report.Users,
			"persisted", report.Persisted,
			"failed", report.Failed)
		return nil
	}

	users, err := deps.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, user := range users {
		if user.ID != userID {
			continue
		}
		report, err := deps.Service.CrawlUser(ctx, user)
		if err != nil {
			return err
		}
		deps.Logger.Info("crawl finished",
			"user_id", userID,
			"status", report.Status,
			"persisted", report.Count)
		return nil
	}
	return fmt.Errorf("user %d not found", userID)
}
