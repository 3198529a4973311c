// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the app's commands for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fusendo/internal/apperr"
	"github.com/starford/fusendo/internal/command"
)

// ReportFormatURI is the resource URI of ReportFormat.
const ReportFormatURI = "fusendo://report-format"

// Server wraps the MCP server with one tool per command.
type Server struct {
	mcp *server.MCPServer
	svc *command.Service
}

// New creates a new MCP server with all command tools registered.
func New(svc *command.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"fu-sendo-it",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	for _, tool := range tools() {
		s.mcp.AddTool(tool, s.invoke(tool.Name))
	}

	s.mcp.AddResource(
		mcp.NewResource(ReportFormatURI, "Report Format",
			mcp.WithResourceDescription("Markdown layout and file naming used when saving sticky note reports."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReportFormat,
	)

	return s
}

func tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(command.Greet,
			mcp.WithDescription("Return a greeting. Useful as a health check."),
			mcp.WithString("name", mcp.Description("Name to greet")),
		),
		mcp.NewTool(command.SaveMarkdownFile,
			mcp.WithDescription("Open a native save dialog and write the Markdown content to the chosen file. "+
				"Returns the saved path. Read "+ReportFormatURI+" for the naming rules."),
			mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to save")),
			mcp.WithString("filename", mcp.Description("Suggested file name; derived from the content when empty")),
		),
		mcp.NewTool(command.SelectDirectory,
			mcp.WithDescription("Open a native folder dialog and return the chosen folder."),
		),
		mcp.NewTool(command.WriteFileToPath,
			mcp.WithDescription("Write content to an absolute path without a dialog, replacing any existing file. "+
				"Parent directories are not created."),
			mcp.WithString("file_path", mcp.Required(), mcp.Description("Absolute destination path")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Text content to write")),
		),
		mcp.NewTool(command.PendingDialogs,
			mcp.WithDescription("List dialogs that are open and waiting for the user, with their ids."),
		),
		mcp.NewTool(command.CancelDialog,
			mcp.WithDescription("Dismiss a pending dialog by id; the waiting command fails as cancelled."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Dialog id from pending_dialogs")),
		),
		mcp.NewTool(command.ReadTextFile,
			mcp.WithDescription("Read a text file from the app data directory."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the app data directory")),
		),
		mcp.NewTool(command.WriteTextFile,
			mcp.WithDescription("Write a text file in the app data directory, creating folders as needed."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the app data directory")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Text content to write")),
		),
		mcp.NewTool(command.Exists,
			mcp.WithDescription("Report whether a file exists in the app data directory."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the app data directory")),
		),
		mcp.NewTool(command.ListTextFiles,
			mcp.WithDescription("List files in the app data directory or one of its folders."),
			mcp.WithString("dir", mcp.Description("Optional folder to list (empty for all)")),
		),
		mcp.NewTool(command.BackupTextFile,
			mcp.WithDescription("Write content to a timestamped backup next to path in the app data directory."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the app data directory")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Text content to back up")),
		),
		mcp.NewTool(command.RecentLocations,
			mcp.WithDescription("List recently saved files and picked folders, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 10, max 100)")),
		),
	}
}

// Serve runs the MCP protocol over in/out until ctx ends or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// invoke returns a tool handler that forwards the call arguments to the
// named command.
func (s *Server) invoke(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := s.svc.Invoke(ctx, name, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %s", apperr.KindOf(err), err.Error())), nil
		}
		if text, ok := result.(string); ok {
			return mcp.NewToolResultText(text), nil
		}
		out, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}
}

func (s *Server) readReportFormat(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ReportFormatURI,
			MIMEType: "text/markdown",
			Text:     ReportFormat,
		},
	}, nil
}
