package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/mrhoge/invoice-renamer/internal/config"
	"github.com/mrhoge/invoice-renamer/internal/descriptions"
	"github.com/mrhoge/invoice-renamer/internal/viewer"
)

const (
	// EndpointPath is where the streamable HTTP transport is served
	EndpointPath = "/mcp"

	shutdownTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	session   *viewer.Session
	logger    *logrus.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance driving session
func NewServer(cfg *config.Config, session *viewer.Session, logger *logrus.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		session:   session,
		logger:    logger,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Folder and file tools
	s.mcpServer.AddTool(mcp.NewTool("invoice_open_folder",
		mcp.WithDescription(descriptions.OpenFolderDescription),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Absolute path of the invoice folder"),
		),
	), s.handleOpenFolder)

	s.mcpServer.AddTool(mcp.NewTool("invoice_list_files",
		mcp.WithDescription(descriptions.ListFilesDescription),
	), s.handleListFiles)

	s.mcpServer.AddTool(mcp.NewTool("invoice_open_file",
		mcp.WithDescription(descriptions.OpenFileDescription),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name inside the current folder"),
		),
	), s.handleOpenFile)

	// Viewing tools
	s.mcpServer.AddTool(mcp.NewTool("invoice_navigate",
		mcp.WithDescription(descriptions.NavigateDescription),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum(actionNext, actionPrev, actionZoomIn, actionZoomOut, actionZoomReset),
			mcp.Description("Page or zoom change"),
		),
		mcp.WithNumber("viewport_width", mcp.Description("Width of the viewer area in pixels")),
		mcp.WithNumber("viewport_height", mcp.Description("Height of the viewer area in pixels")),
	), s.handleNavigate)

	s.mcpServer.AddTool(mcp.NewTool("invoice_preview",
		mcp.WithDescription(descriptions.PreviewDescription),
	), s.handlePreview)

	s.mcpServer.AddTool(mcp.NewTool("invoice_page_text",
		mcp.WithDescription(descriptions.PageTextDescription),
	), s.handlePageText)

	// Selection tools
	s.mcpServer.AddTool(mcp.NewTool("invoice_select_region",
		append(regionParams(),
			mcp.WithDescription(descriptions.SelectRegionDescription),
			mcp.WithBoolean("debug", mcp.Description("Run the full analysis and report statistics")),
		)...,
	), s.handleSelectRegion)

	s.mcpServer.AddTool(mcp.NewTool("invoice_ocr_region",
		append(regionParams(),
			mcp.WithDescription(descriptions.OCRRegionDescription),
		)...,
	), s.handleOCRRegion)

	// Filename tools
	s.mcpServer.AddTool(mcp.NewTool("invoice_add_item",
		mcp.WithDescription(descriptions.AddItemDescription),
		mcp.WithString("item", mcp.Required(), mcp.Description("Text to append")),
		mcp.WithBoolean("format_date", mcp.Description("Convert dates to YYYY-MM-DD first")),
	), s.handleAddItem)

	s.mcpServer.AddTool(mcp.NewTool("invoice_add_account",
		mcp.WithDescription(descriptions.AddAccountDescription),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account title")),
	), s.handleAddAccount)

	s.mcpServer.AddTool(mcp.NewTool("invoice_list_accounts",
		mcp.WithDescription(descriptions.ListAccountsDescription),
	), s.handleListAccounts)

	s.mcpServer.AddTool(mcp.NewTool("invoice_set_filename",
		mcp.WithDescription(descriptions.SetFilenameDescription),
		mcp.WithString("name", mcp.Description("New filename without extension")),
		mcp.WithBoolean("reset", mcp.Description("Restore the current file name")),
	), s.handleSetFilename)

	s.mcpServer.AddTool(mcp.NewTool("invoice_rename",
		mcp.WithDescription(descriptions.RenameDescription),
	), s.handleRename)

	s.mcpServer.AddTool(mcp.NewTool("invoice_backup",
		mcp.WithDescription(descriptions.BackupDescription),
	), s.handleBackup)

	// Utility tools
	s.mcpServer.AddTool(mcp.NewTool("invoice_state",
		mcp.WithDescription(descriptions.StateDescription),
	), s.handleState)

	s.mcpServer.AddTool(mcp.NewTool("invoice_server_info",
		mcp.WithDescription(descriptions.ServerInfoDescription),
	), s.handleServerInfo)
}

// regionParams are the arguments shared by the selection tools
func regionParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Left edge in preview pixels")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Top edge in preview pixels")),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("Selection width in preview pixels")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("Selection height in preview pixels")),
		mcp.WithNumber("preview_width", mcp.Required(), mcp.Description("Width of the displayed preview")),
		mcp.WithNumber("preview_height", mcp.Required(), mcp.Description("Height of the displayed preview")),
		mcp.WithString("language",
			mcp.Enum("jpn+eng", "jpn", "eng", "auto"),
			mcp.Description("OCR language (default from configuration)"),
		),
	}
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout until stdin closes or ctx ends
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.WithField("dir", s.config.PDFDirectory).Info("Starting invoice renamer in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(newStdLogger(s.logger))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the streamable HTTP transport until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	handler := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(EndpointPath),
		server.WithLogger(&logrusAdapter{logger: s.logger}),
	)

	mux := http.NewServeMux()
	mux.Handle(EndpointPath, handler)

	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"address":  s.config.Address(),
			"endpoint": EndpointPath,
		}).Info("Starting streamable HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
