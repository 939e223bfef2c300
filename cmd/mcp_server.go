package cmd

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/browser-cli/internal/browser"
)

// mcpServer wraps the MCP server around one injected browser session. The
// session itself does not queue concurrent actions, so the server serializes
// tool calls with its own mutex.
type mcpServer struct {
	session   *browser.Session
	sessionMu sync.Mutex
	mcp       *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
	Session   browser.Config
}

// newMCPServer creates an MCP server with all browser tools registered
// against a fresh, unstarted session.
func newMCPServer(cfg MCPConfig) *mcpServer {
	s := &mcpServer{session: browser.NewSession(cfg.Session)}

	s.mcp = mcpserver.NewMCPServer(
		"browser-cli",
		"1.0.0",
	)

	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// browser_navigate
	s.mcp.AddTool(
		mcp.NewTool("browser_navigate",
			mcp.WithDescription("Navigate the browser session to a URL. Launches the browser on first use."),
			mcp.WithString("url", mcp.Description("Absolute URL to load"), mcp.Required()),
		),
		s.handleNavigate,
	)

	// browser_snapshot
	s.mcp.AddTool(
		mcp.NewTool("browser_snapshot",
			mcp.WithDescription("Take an accessibility snapshot of the current page. Returns an indented outline of roles, names and states; interactive elements carry [ref=eN] ids for use with the action tools. Taking a snapshot invalidates all refs from earlier snapshots."),
		),
		s.handleSnapshot,
	)

	// browser_click
	s.mcp.AddTool(
		mcp.NewTool("browser_click",
			mcp.WithDescription("Click an element by its snapshot ref"),
			mcp.WithString("ref", mcp.Description("Element ref from the latest snapshot (e.g. 'e7')"), mcp.Required()),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
		),
		s.handleClick,
	)

	// browser_type
	s.mcp.AddTool(
		mcp.NewTool("browser_type",
			mcp.WithDescription("Type text into an element by its snapshot ref, replacing existing content"),
			mcp.WithString("ref", mcp.Description("Element ref from the latest snapshot"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithBoolean("submit", mcp.Description("Press Enter after typing")),
			mcp.WithBoolean("slowly", mcp.Description("Type one character at a time (for pages that react to keystrokes)")),
		),
		s.handleType,
	)

	// browser_press_key
	s.mcp.AddTool(
		mcp.NewTool("browser_press_key",
			mcp.WithDescription("Press a key on whatever currently has focus"),
			mcp.WithString("key", mcp.Description("Key name or character (e.g. 'Enter', 'Tab', 'ArrowDown', 'a')"), mcp.Required()),
		),
		s.handlePressKey,
	)

	// browser_select_option
	s.mcp.AddTool(
		mcp.NewTool("browser_select_option",
			mcp.WithDescription("Select dropdown options by their visible text"),
			mcp.WithString("ref", mcp.Description("Ref of the select control from the latest snapshot"), mcp.Required()),
			mcp.WithArray("values", mcp.Description("Option texts to select"), mcp.Required()),
		),
		s.handleSelectOption,
	)

	// browser_evaluate
	s.mcp.AddTool(
		mcp.NewTool("browser_evaluate",
			mcp.WithDescription("Run a JavaScript function in the page and return its result. Pass a function expression, e.g. '() => document.title' or '(el) => el.value' with a ref."),
			mcp.WithString("code", mcp.Description("Function expression to invoke"), mcp.Required()),
			mcp.WithString("ref", mcp.Description("Optional element ref; the live element is passed as the function's argument")),
		),
		s.handleEvaluate,
	)

	// browser_screenshot
	s.mcp.AddTool(
		mcp.NewTool("browser_screenshot",
			mcp.WithDescription("Capture a screenshot of the current page and return the file path"),
			mcp.WithString("filename", mcp.Description("Artifact filename (default: derived from the current time)")),
			mcp.WithBoolean("full-page", mcp.Description("Capture the full scrollable page instead of the viewport")),
			mcp.WithBoolean("annotate", mcp.Description("Draw ref labels from the latest snapshot onto the image")),
		),
		s.handleScreenshot,
	)

	// browser_status
	s.mcp.AddTool(
		mcp.NewTool("browser_status",
			mcp.WithDescription("Report whether a browser session is live and its current URL"),
		),
		s.handleStatus,
	)

	// browser_close
	s.mcp.AddTool(
		mcp.NewTool("browser_close",
			mcp.WithDescription("Close the browser session. The next navigation relaunches it."),
		),
		s.handleClose,
	)
}
