package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/viewer"
)

const (
	actionNext      = "next"
	actionPrev      = "prev"
	actionZoomIn    = "zoom_in"
	actionZoomOut   = "zoom_out"
	actionZoomReset = "zoom_reset"
)

// toolError turns err into a tool result. Classified errors carry the
// user-facing message and solution.
func (s *Server) toolError(op string, err error) *mcp.CallToolResult {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnknown {
		s.logger.WithError(err).WithField("tool", op).Warn("Tool failed")
		return mcp.NewToolResultError(err.Error())
	}
	apperrors.Handle(s.logger, err, kind, op)
	return mcp.NewToolResultError(apperrors.Describe(kind, err.Error()))
}

func (s *Server) handleOpenFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.session.OpenFolder(dir); err != nil {
		return s.toolError("invoice_open_folder", err), nil
	}
	return s.listFiles()
}

func (s *Server) handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.session.Refresh(); err != nil {
		return s.toolError("invoice_list_files", err), nil
	}
	return s.listFiles()
}

func (s *Server) listFiles() (*mcp.CallToolResult, error) {
	stats, err := s.session.FolderStats()
	if err != nil {
		return s.toolError("invoice_list_files", err), nil
	}
	return mcp.NewToolResultText(formatFolder(stats)), nil
}

func (s *Server) handleOpenFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.session.Open(name)
	if err != nil {
		return s.toolError("invoice_open_file", err), nil
	}
	info, meta, err := s.session.Document()
	if err != nil {
		return s.toolError("invoice_open_file", err), nil
	}
	return mcp.NewToolResultText(formatOpened(state, info, meta)), nil
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state *viewer.State
	switch action {
	case actionNext:
		state, err = s.session.Next()
	case actionPrev:
		state, err = s.session.Prev()
	case actionZoomIn:
		state = s.session.ZoomIn()
	case actionZoomOut:
		state = s.session.ZoomOut()
	case actionZoomReset:
		state = s.session.ZoomReset()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action: %s", action)), nil
	}
	if err != nil {
		return s.toolError("invoice_navigate", err), nil
	}

	text := formatState(state)
	viewport := geometry.Size{
		W: request.GetFloat("viewport_width", 0),
		H: request.GetFloat("viewport_height", 0),
	}
	if !viewport.IsZero() && state.File != "" {
		display, err := s.session.Display(viewport)
		if err != nil {
			return s.toolError("invoice_navigate", err), nil
		}
		text += fmt.Sprintf("Preview size: %dx%d\n", display.Width, display.Height)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	preview, err := s.session.Preview(ctx)
	if err != nil {
		return s.toolError("invoice_preview", err), nil
	}
	state := s.session.State()
	caption := fmt.Sprintf("%s - %s (%dx%d at %.1fx)", state.File, state.Label, preview.Width, preview.Height, preview.Scale)
	return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(preview.PNG), "image/png"), nil
}

func (s *Server) handlePageText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := s.session.State()
	if state.File == "" {
		return s.toolError("invoice_page_text", viewer.ErrNoDocument), nil
	}
	return mcp.NewToolResultText(formatPageText(state)), nil
}

// region reads the selection arguments shared by the selection tools
func region(request mcp.CallToolRequest) (geometry.ViewRect, geometry.Size, error) {
	var values [6]float64
	for i, key := range []string{"x", "y", "width", "height", "preview_width", "preview_height"} {
		v, err := request.RequireFloat(key)
		if err != nil {
			return geometry.ViewRect{}, geometry.Size{}, err
		}
		values[i] = v
	}
	rect := geometry.ViewRect{X: int(values[0]), Y: int(values[1]), W: int(values[2]), H: int(values[3])}
	return rect, geometry.Size{W: values[4], H: values[5]}, nil
}

func (s *Server) handleSelectRegion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rect, preview, err := region(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	language := request.GetString("language", "")
	debug := request.GetBool("debug", s.config.IsDebug())

	result, err := s.session.Select(ctx, rect, preview, language, debug)
	if err != nil {
		return s.toolError("invoice_select_region", err), nil
	}
	return mcp.NewToolResultText(formatSelection(result)), nil
}

func (s *Server) handleOCRRegion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rect, preview, err := region(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.session.Recognize(ctx, rect, preview, request.GetString("language", ""))
	if err != nil {
		return s.toolError("invoice_ocr_region", err), nil
	}
	return mcp.NewToolResultText(formatRecognition(result)), nil
}

func (s *Server) handleAddItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := request.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := s.session.AddItem(item, request.GetBool("format_date", false))
	if err != nil {
		return s.toolError("invoice_add_item", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Filename: %s", name)), nil
}

func (s *Server) handleAddAccount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	account, err := request.RequireString("account")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := s.session.AddAccount(account)
	if err != nil {
		return s.toolError("invoice_add_account", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Filename: %s", name)), nil
}

func (s *Server) handleListAccounts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatList("Account titles", s.session.Accounts())), nil
}

func (s *Server) handleSetFilename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetBool("reset", false) {
		name, err := s.session.ResetFilename()
		if err != nil {
			return s.toolError("invoice_set_filename", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Filename: %s", name)), nil
	}
	name := s.session.SetFilename(request.GetString("name", ""))
	return mcp.NewToolResultText(fmt.Sprintf("Filename: %s", name)), nil
}

func (s *Server) handleRename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.session.Rename(ctx)
	if err != nil {
		return s.toolError("invoice_rename", err), nil
	}
	return mcp.NewToolResultText(formatRename(result, s.session.Files())), nil
}

func (s *Server) handleBackup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.session.Backup()
	if err != nil {
		return s.toolError("invoice_backup", err), nil
	}
	return mcp.NewToolResultText(formatBackup(result)), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatState(s.session.State())), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}
