package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mj1618/browser-cli/internal/browser"
	"github.com/mj1618/browser-cli/internal/output"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval [function]",
	Short: "Run a JavaScript function in a page and print its result",
	Long: `Launch a browser, navigate to a URL and run a JavaScript function
expression in the page. The function's return value is awaited if it is a
promise and printed in the selected output format.

Examples:
  browser-cli eval --url https://example.com '() => document.title'
  browser-cli eval --url https://example.com '() => [...document.links].map(a => a.href)'`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().String("url", "", "URL to load (required)")
	evalCmd.MarkFlagRequired("url")
	evalCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
	addSessionFlags(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	code := args[0]

	session := browser.NewSession(sessionConfigFromFlags(cmd))
	defer session.Close()

	ctx := cmd.Context()
	if err := session.Navigate(ctx, url); err != nil {
		return err
	}
	raw, err := session.Evaluate(ctx, code, "")
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return output.Print(v)
}
