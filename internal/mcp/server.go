// Package mcp provides the stdio MCP server exposing the meme editor to agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/mememe/internal/buildinfo"
	"github.com/go-ports/mememe/internal/models"
	"github.com/go-ports/mememe/internal/picker"
	"github.com/go-ports/mememe/internal/service"
)

const pickDescription = `Pick the photo to caption. Give the path of an image file (png, jpeg, gif, bmp, webp). An empty path is the user dismissing the picker and changes nothing. The camera source only works when the camera is enabled in config.`

const captionDescription = `Edit one caption: focuses the field, replaces its text and returns. The placeholder text (TOP/BOTTOM) is cleared the first time a field is focused. An empty string is a valid caption.`

const shareDescription = `Render the meme and share it. The composited PNG is written to the share directory and the meme is stored for this session. Set decline to dismiss the share sheet instead; nothing is stored. Fails when no photo has been picked.`

// NewServer creates and registers all meme tools on a new MCP server.
// It is separate from Serve so that tests can obtain a fully configured
// server without committing to the stdio transport.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("mememe", buildinfo.Version)
	registerEditorTools(s, svc)
	registerStoreTools(s, svc)
	return s
}

// Serve starts the stdio MCP server rooted at home, blocking until stdin closes.
func Serve(_ context.Context, home string) error {
	svc, err := service.New(home)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	return mcpserver.ServeStdio(NewServer(svc))
}

// registerEditorTools wires the screen events.
func registerEditorTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("meme_pick",
		mcp.WithDescription(pickDescription),
		mcp.WithString("path",
			mcp.Description("Image file path. Empty dismisses the picker."),
		),
		mcp.WithString("source",
			mcp.Description("Picker source (default library)."),
			mcp.Enum("library", "camera"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePick(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("meme_caption",
		mcp.WithDescription(captionDescription),
		mcp.WithString("field",
			mcp.Description("Caption field."),
			mcp.Enum("top", "bottom"),
			mcp.Required(),
		),
		mcp.WithString("text",
			mcp.Description("New caption text."),
			mcp.Required(),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCaption(svc, req)
	})

	s.AddTool(mcp.NewTool("meme_share",
		mcp.WithDescription(shareDescription),
		mcp.WithBoolean("decline",
			mcp.Description("Dismiss the share sheet without sharing."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleShare(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("meme_cancel",
		mcp.WithDescription("Abandon the current meme: clears the photo, restores the placeholder captions and disables share."),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(svc.Cancel())
	})

	s.AddTool(mcp.NewTool("meme_state",
		mcp.WithDescription("Show the editor screen: photo, captions, focus and whether share is enabled."),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(svc.State())
	})
}

// registerStoreTools wires the read-only queries over shared memes.
func registerStoreTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("meme_list",
		mcp.WithDescription("List memes shared this session, oldest first."),
		mcp.WithNumber("offset",
			mcp.Description("Memes to skip (default 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 20)"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("meme_search",
		mcp.WithDescription("Search shared memes by caption text. Returns matches ranked by relevance."),
		mcp.WithString("query",
			mcp.Description("Search terms"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 5)"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("meme_similar",
		mcp.WithDescription("Find shared memes whose source photo looks like the given meme's."),
		mcp.WithString("id",
			mcp.Description("Meme ID or unique prefix"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 5)"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSimilar(ctx, svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handlePick(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := picker.ParseSource(req.GetString("source", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := svc.Pick(ctx, req.GetString("path", ""), source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func handleCaption(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := models.ParseField(req.GetString("field", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(svc.Caption(field, req.GetString("text", "")))
}

func handleShare(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := svc.Share(ctx, req.GetBool("decline", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func handleList(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	offset := req.GetInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := req.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	results, err := svc.List(ctx, offset, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	total, err := svc.Count(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"total":   total,
		"showing": len(results),
		"memes":   summariesToMaps(results, false),
	})
}

func handleSearch(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}
	results, err := svc.Search(ctx, req.GetString("query", ""), limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summariesToMaps(results, true))
}

func handleSimilar(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}
	results, err := svc.Similar(ctx, req.GetString("id", ""), limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summariesToMaps(results, true))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// summariesToMaps shapes store rows for tool output. Scores are only
// meaningful for ranked queries.
//
//revive:disable:flag-parameter
func summariesToMaps(ss []models.Summary, withScore bool) []map[string]any {
	out := make([]map[string]any, 0, len(ss))
	for _, s := range ss {
		m := map[string]any{
			"id":         s.ID,
			"top":        s.TopText,
			"bottom":     s.BottomText,
			"width":      s.Width,
			"height":     s.Height,
			"created_at": s.CreatedAt.UTC().Format(time.RFC3339),
		}
		if withScore {
			m["score"] = roundTwo(s.Score)
		}
		out = append(out, m)
	}
	return out
}

//revive:enable:flag-parameter

// roundTwo rounds f to 2 decimal places.
func roundTwo(f float64) float64 {
	return math.Round(f*100) / 100
}
