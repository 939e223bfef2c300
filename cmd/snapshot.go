package cmd

import (
	"fmt"

	"github.com/mj1618/browser-cli/internal/browser"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print an accessibility snapshot of a page",
	Long: `Launch a browser, navigate to a URL and print an accessibility snapshot
of the page as an indented outline. Interactive elements carry [ref=eN] ids.

The snapshot is printed raw (not wrapped in the output format) so it can be
piped directly into an agent's context.

Examples:
  browser-cli snapshot --url https://example.com
  browser-cli snapshot --url https://example.com --headless=false`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("url", "", "URL to load (required)")
	snapshotCmd.MarkFlagRequired("url")
	addSessionFlags(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")

	session := browser.NewSession(sessionConfigFromFlags(cmd))
	defer session.Close()

	ctx := cmd.Context()
	if err := session.Navigate(ctx, url); err != nil {
		return err
	}
	text, err := session.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
