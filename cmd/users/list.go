// Package users implements user inspection commands.
package users

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/campusnotify/noticecrawl/cmd/common"
	"github.com/campusnotify/noticecrawl/internal/domain"
)

// Command returns the users command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect configured users",
	}
	cmd.AddCommand(listCommand())
	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users and their monitored boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

func runList(ctx context.Context) error {
	deps, err := common.New()
	if err != nil {
		return err
	}
	defer deps.Close()

	users, err := deps.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users configured")
		return nil
	}

	renderTable(users)
	return nil
}

func renderTable(users []domain.User) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Username", "School", "Major", "Interests", "Alarm", "Boards"})

	for _, user := range users {
		urls := make([]string, 0, len(user.TargetURLs))
		for _, target := range user.TargetURLs {
			urls = append(urls, target.URL)
		}
		t.AppendRow(table.Row{
			user.ID,
			user.Username,
			user.School,
			user.Major,
			user.Interests,
			user.AlarmTime,
			strings.Join(urls, "\n"),
		})
	}
	t.Render()
}
