// Package cmd implements the command-line interface for the notice crawler.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusnotify/noticecrawl/cmd/crawl"
	"github.com/campusnotify/noticecrawl/cmd/httpd"
	"github.com/campusnotify/noticecrawl/cmd/users"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "noticecrawl",
	Short: "University notice crawler and notifier",
	Long:  "Crawls configured notice boards, scores postings against each user's profile, and delivers the relevant ones as templated messages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("noticecrawl version %s\n", version)
		},
	})

	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(users.Command())
}
