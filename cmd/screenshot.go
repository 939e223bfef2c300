package cmd

import (
	"github.com/mj1618/browser-cli/internal/browser"
	"github.com/mj1618/browser-cli/internal/output"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot of a page",
	Long: `Launch a browser, navigate to a URL and capture a PNG screenshot.
The screenshot is written to the artifact directory and its path printed.

With --annotate, elements from an accessibility snapshot are labeled with
their [ref] ids on the image.

Examples:
  browser-cli screenshot --url https://example.com
  browser-cli screenshot --url https://example.com --full-page --output page.png
  browser-cli screenshot --url https://example.com --annotate`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("url", "", "URL to load (required)")
	screenshotCmd.MarkFlagRequired("url")
	screenshotCmd.Flags().String("output", "", "Screenshot filename (default: derived from the current time)")
	screenshotCmd.Flags().Bool("full-page", false, "Capture the full scrollable page instead of the viewport")
	screenshotCmd.Flags().Bool("annotate", false, "Label snapshot refs on the image")
	addSessionFlags(screenshotCmd)
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	filename, _ := cmd.Flags().GetString("output")
	fullPage, _ := cmd.Flags().GetBool("full-page")
	annotate, _ := cmd.Flags().GetBool("annotate")

	session := browser.NewSession(sessionConfigFromFlags(cmd))
	defer session.Close()

	ctx := cmd.Context()
	if err := session.Navigate(ctx, url); err != nil {
		return err
	}
	if annotate {
		// Annotation labels come from snapshot refs, so take one first.
		if _, err := session.Snapshot(ctx); err != nil {
			return err
		}
	}
	path, err := session.Screenshot(ctx, browser.ScreenshotOptions{
		Filename: filename,
		FullPage: fullPage,
		Annotate: annotate,
	})
	if err != nil {
		return err
	}
	return output.Print(map[string]string{"path": path})
}
