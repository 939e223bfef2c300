package cmd

import (
	"time"

	"github.com/mj1618/browser-cli/internal/browser"
	"github.com/spf13/cobra"
)

// addSessionFlags adds the browser session flags shared by every command that
// launches a session.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("headless", true, "Run the browser headlessly")
	cmd.Flags().String("exec-path", "", "Browser executable override (default: auto-detect)")
	cmd.Flags().String("artifact-dir", "", "Directory for screenshots (default: system temp dir)")
	cmd.Flags().Int("idle-timeout", 300, "Seconds of inactivity before the session is evicted")
	cmd.Flags().Int("launch-timeout", 30, "Max seconds to wait for the browser to launch")
}

// sessionConfigFromFlags builds a browser.Config from the shared session flags.
func sessionConfigFromFlags(cmd *cobra.Command) browser.Config {
	headless, _ := cmd.Flags().GetBool("headless")
	execPath, _ := cmd.Flags().GetString("exec-path")
	artifactDir, _ := cmd.Flags().GetString("artifact-dir")
	idleTimeout, _ := cmd.Flags().GetInt("idle-timeout")
	launchTimeout, _ := cmd.Flags().GetInt("launch-timeout")

	return browser.Config{
		ExecPath:      execPath,
		Headless:      headless,
		ArtifactDir:   artifactDir,
		IdleTimeout:   time.Duration(idleTimeout) * time.Second,
		LaunchTimeout: time.Duration(launchTimeout) * time.Second,
	}
}

// stringParam reads a string MCP tool argument with a default.
func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// boolParam reads a boolean MCP tool argument with a default.
func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// stringSliceParam reads a string-array MCP tool argument. Non-string items
// are skipped.
func stringSliceParam(params map[string]interface{}, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
