package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/browser-cli/internal/browser"
	"gopkg.in/yaml.v3"
)

// actionResult is the YAML body of a successful action tool response.
type actionResult struct {
	OK     bool   `yaml:"ok"               json:"ok"`
	Action string `yaml:"action"           json:"action"`
	Ref    string `yaml:"ref,omitempty"    json:"ref,omitempty"`
	URL    string `yaml:"url,omitempty"    json:"url,omitempty"`
	Key    string `yaml:"key,omitempty"    json:"key,omitempty"`
	Text   string `yaml:"text,omitempty"   json:"text,omitempty"`
	Path   string `yaml:"path,omitempty"   json:"path,omitempty"`
	Active *bool  `yaml:"active,omitempty" json:"active,omitempty"`
}

// resultToText serializes a result to YAML for the MCP response.
func resultToText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("marshal result: %v", err)
	}
	return string(b)
}

func (s *mcpServer) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	url := stringParam(params, "url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.Navigate(ctx, url); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "navigate", URL: url})), nil
}

func (s *mcpServer) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	text, err := s.session.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *mcpServer) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ref := stringParam(params, "ref", "")
	if ref == "" {
		return mcp.NewToolResultError("ref is required"), nil
	}
	opts := browser.ClickOptions{
		Button:      stringParam(params, "button", ""),
		DoubleClick: boolParam(params, "double", false),
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.Click(ctx, ref, opts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "click", Ref: ref})), nil
}

func (s *mcpServer) handleType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ref := stringParam(params, "ref", "")
	text := stringParam(params, "text", "")
	if ref == "" {
		return mcp.NewToolResultError("ref is required"), nil
	}
	opts := browser.TypeOptions{
		Submit: boolParam(params, "submit", false),
		Slowly: boolParam(params, "slowly", false),
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.Type(ctx, ref, text, opts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "type", Ref: ref, Text: text})), nil
}

func (s *mcpServer) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	key := stringParam(params, "key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.PressKey(ctx, key); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "press_key", Key: key})), nil
}

func (s *mcpServer) handleSelectOption(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ref := stringParam(params, "ref", "")
	values := stringSliceParam(params, "values")
	if ref == "" {
		return mcp.NewToolResultError("ref is required"), nil
	}
	if len(values) == 0 {
		return mcp.NewToolResultError("values is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.SelectOption(ctx, ref, values); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "select_option", Ref: ref})), nil
}

func (s *mcpServer) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	code := stringParam(params, "code", "")
	ref := stringParam(params, "ref", "")
	if code == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	raw, err := s.session.Evaluate(ctx, code, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Round-trip through yaml for a readable result body.
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return mcp.NewToolResultText(string(raw)), nil
	}
	return mcp.NewToolResultText(resultToText(map[string]interface{}{"ok": true, "action": "evaluate", "result": v})), nil
}

func (s *mcpServer) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := browser.ScreenshotOptions{
		Filename: stringParam(params, "filename", ""),
		FullPage: boolParam(params, "full-page", false),
		Annotate: boolParam(params, "annotate", false),
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	path, err := s.session.Screenshot(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Attach the image when it is small enough to be useful inline; the
	// path in the text body is the authoritative artifact reference.
	data, readErr := os.ReadFile(path)
	if readErr != nil || len(data) > 4<<20 {
		return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "screenshot", Path: path})), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: resultToText(actionResult{OK: true, Action: "screenshot", Path: path})},
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func (s *mcpServer) handleStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	active := s.session.Active()
	return mcp.NewToolResultText(resultToText(actionResult{
		OK:     true,
		Action: "status",
		Active: &active,
		URL:    s.session.CurrentURL(),
	})), nil
}

func (s *mcpServer) handleClose(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.Close(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{OK: true, Action: "close"})), nil
}
