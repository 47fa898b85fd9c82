// Package e2e_test: MCP server end-to-end tests.
//
// Each test wires the real MCP server in-process via the mcp-go
// InProcessTransport, backed by a fresh service.Service rooted at a
// temporary directory. The full stack (service, screen, compose, share,
// db, search, mcp handler, mcp-go server, in-process client) runs within a
// single test process.
package e2e_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/go-ports/mememe/internal/checkers"
	internalmcp "github.com/go-ports/mememe/internal/mcp"
	"github.com/go-ports/mememe/internal/service"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newMCPClient creates an in-process MCP client backed by a fresh service
// rooted at c.TB.TempDir(). The client is started and initialized before it
// is returned; cleanup is registered on c automatically.
func newMCPClient(c *qt.C) *mcpclient.Client {
	c.TB.Helper()

	svc, err := service.New(c.TB.TempDir())
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = svc.Close() })

	cl, err := mcpclient.NewInProcessClient(internalmcp.NewServer(svc))
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = cl.Close() })

	c.Assert(cl.Start(context.Background()), qt.IsNil)

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "e2e-test", Version: "0.0.1"}
	_, err = cl.Initialize(context.Background(), initReq)
	c.Assert(err, qt.IsNil)

	return cl
}

// callToolResult invokes the named MCP tool and returns the raw result.
func callToolResult(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) *mcp.CallToolResult {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := cl.CallTool(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Content, qt.HasLen, 1)
	return result
}

// callTool invokes the named MCP tool and returns the text of the first
// content item. Tool errors fail the test.
func callTool(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) string {
	result := callToolResult(c, cl, name, args)
	tc, ok := mcp.AsTextContent(result.Content[0])
	c.Assert(ok, qt.IsTrue)
	c.Assert(result.IsError, qt.IsFalse, qt.Commentf("tool %s: %s", name, tc.Text))
	return tc.Text
}

// shareMeme picks path, sets both captions and shares; it returns the meme ID.
func shareMeme(c *qt.C, cl *mcpclient.Client, path, top, bottom string) string {
	callTool(c, cl, "meme_pick", map[string]any{"path": path})
	callTool(c, cl, "meme_caption", map[string]any{"field": "top", "text": top})
	callTool(c, cl, "meme_caption", map[string]any{"field": "bottom", "text": bottom})
	text := callTool(c, cl, "meme_share", nil)

	var res struct {
		Outcome string `json:"outcome"`
		MemeID  string `json:"meme_id"`
	}
	c.Assert(json.Unmarshal([]byte(text), &res), qt.IsNil)
	c.Assert(res.Outcome, qt.Equals, "completed")
	c.Assert(res.MemeID, qt.Not(qt.Equals), "")
	return res.MemeID
}

// ---------------------------------------------------------------------------
// ListTools
// ---------------------------------------------------------------------------

func TestMCPListTools_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)

	result, err := cl.ListTools(context.Background(), mcp.ListToolsRequest{})
	c.Assert(err, qt.IsNil)
	c.Assert(result.Tools, qt.HasLen, 8)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	for _, want := range []string{
		"meme_pick", "meme_caption", "meme_share", "meme_cancel",
		"meme_state", "meme_list", "meme_search", "meme_similar",
	} {
		c.Assert(names, qt.Contains, want)
	}
}

// ---------------------------------------------------------------------------
// Editor tools
// ---------------------------------------------------------------------------

func TestMCPEditor_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)
	photo := writePhoto(t, "photo.png", 64, 48, red, blue)

	c.Run("initial state shows placeholders and share disabled", func(c *qt.C) {
		text := callTool(c, cl, "meme_state", nil)
		c.Assert(text, checkers.JSONPathEquals("$.has_image"), false)
		c.Assert(text, checkers.JSONPathEquals("$.can_share"), false)
		c.Assert(text, checkers.JSONPathEquals("$.top.text"), "TOP")
		c.Assert(text, checkers.JSONPathEquals("$.bottom.text"), "BOTTOM")
	})

	c.Run("dismissed picker changes nothing", func(c *qt.C) {
		text := callTool(c, cl, "meme_pick", map[string]any{"path": ""})
		c.Assert(text, checkers.JSONPathEquals("$.outcome"), "canceled")
		c.Assert(text, checkers.JSONPathEquals("$.state.can_share"), false)
	})

	c.Run("picking a photo enables share", func(c *qt.C) {
		text := callTool(c, cl, "meme_pick", map[string]any{"path": photo})
		c.Assert(text, checkers.JSONPathEquals("$.outcome"), "completed")
		c.Assert(text, checkers.JSONPathEquals("$.state.has_image"), true)
		c.Assert(text, checkers.JSONPathEquals("$.state.image_width"), float64(64))
		c.Assert(text, checkers.JSONPathEquals("$.state.can_share"), true)
	})

	c.Run("caption replaces the placeholder", func(c *qt.C) {
		text := callTool(c, cl, "meme_caption", map[string]any{"field": "top", "text": "ONE DOES NOT"})
		c.Assert(text, checkers.JSONPathEquals("$.top.text"), "ONE DOES NOT")
		c.Assert(text, checkers.JSONPathEquals("$.top.state"), "edited")
		c.Assert(text, checkers.JSONPathEquals("$.bottom.text"), "BOTTOM")
		c.Assert(text, checkers.JSONPathEquals("$.focus"), "")
	})

	c.Run("share writes the file and stores the meme", func(c *qt.C) {
		text := callTool(c, cl, "meme_share", nil)
		c.Assert(text, checkers.JSONPathEquals("$.outcome"), "completed")
		c.Assert(text, checkers.JSONPathEquals("$.channel"), "file")

		var res struct {
			Location string `json:"location"`
		}
		c.Assert(json.Unmarshal([]byte(text), &res), qt.IsNil)
		_, err := os.Stat(res.Location)
		c.Assert(err, qt.IsNil)

		list := callTool(c, cl, "meme_list", nil)
		c.Assert(list, checkers.JSONPathEquals("$.total"), float64(1))
		c.Assert(list, checkers.JSONPathEquals("$.memes[0].top"), "ONE DOES NOT")
		c.Assert(list, checkers.JSONPathEquals("$.memes[0].bottom"), "BOTTOM")
	})

	c.Run("cancel resets the editor", func(c *qt.C) {
		text := callTool(c, cl, "meme_cancel", nil)
		c.Assert(text, checkers.JSONPathEquals("$.has_image"), false)
		c.Assert(text, checkers.JSONPathEquals("$.can_share"), false)
		c.Assert(text, checkers.JSONPathEquals("$.top.text"), "TOP")
		c.Assert(text, checkers.JSONPathEquals("$.top.state"), "placeholder")
	})
}

func TestMCPEditor_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)

	c.Run("share without a photo is an error", func(c *qt.C) {
		result := callToolResult(c, cl, "meme_share", nil)
		c.Assert(result.IsError, qt.IsTrue)
	})

	c.Run("camera is unavailable by default", func(c *qt.C) {
		result := callToolResult(c, cl, "meme_pick", map[string]any{"path": "x.png", "source": "camera"})
		c.Assert(result.IsError, qt.IsTrue)
	})

	c.Run("unreadable photo fails the pick", func(c *qt.C) {
		text := callTool(c, cl, "meme_pick", map[string]any{"path": "/does/not/exist.png"})
		c.Assert(text, checkers.JSONPathEquals("$.outcome"), "failed")
		c.Assert(text, checkers.JSONPathEquals("$.state.can_share"), false)
	})

	c.Run("unknown caption field is an error", func(c *qt.C) {
		result := callToolResult(c, cl, "meme_caption", map[string]any{"field": "middle", "text": "x"})
		c.Assert(result.IsError, qt.IsTrue)
	})

	c.Run("declined share stores nothing", func(c *qt.C) {
		photo := writePhoto(t, "photo.png", 32, 32, red, blue)
		callTool(c, cl, "meme_pick", map[string]any{"path": photo})

		text := callTool(c, cl, "meme_share", map[string]any{"decline": true})
		c.Assert(text, checkers.JSONPathEquals("$.outcome"), "canceled")
		c.Assert(text, checkers.JSONPathEquals("$.state.can_share"), true)

		list := callTool(c, cl, "meme_list", nil)
		c.Assert(list, checkers.JSONPathEquals("$.total"), float64(0))
	})
}

// ---------------------------------------------------------------------------
// Store tools
// ---------------------------------------------------------------------------

func TestMCPStore_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)

	redBlue := writePhoto(t, "a.png", 40, 40, red, blue)
	blueRed := writePhoto(t, "b.png", 40, 40, blue, red)

	first := shareMeme(c, cl, redBlue, "BRACE YOURSELVES", "WINTER IS COMING")
	shareMeme(c, cl, blueRed, "NOT SURE IF", "OR JUST COMING")
	shareMeme(c, cl, redBlue, "SAME PHOTO", "DIFFERENT WORDS")

	c.Run("list pages in creation order", func(c *qt.C) {
		text := callTool(c, cl, "meme_list", map[string]any{"offset": 1, "limit": 1})
		c.Assert(text, checkers.JSONPathEquals("$.total"), float64(3))
		c.Assert(text, checkers.JSONPathEquals("$.showing"), float64(1))
		c.Assert(text, checkers.JSONPathEquals("$.memes[0].top"), "NOT SURE IF")
	})

	c.Run("search ranks caption matches", func(c *qt.C) {
		text := callTool(c, cl, "meme_search", map[string]any{"query": "winter"})
		c.Assert(text, checkers.JSONPathEquals("$[0].id"), first)
		c.Assert(text, checkers.JSONPathExists("$[0].score"))
	})

	c.Run("search with no match is empty", func(c *qt.C) {
		text := callTool(c, cl, "meme_search", map[string]any{"query": "zzzzqqq"})
		c.Assert(text, qt.Equals, "[]")
	})

	c.Run("similar ranks the same photo first", func(c *qt.C) {
		text := callTool(c, cl, "meme_similar", map[string]any{"id": first})
		c.Assert(text, checkers.JSONPathEquals("$[0].top"), "SAME PHOTO")
	})
}

func TestMCPStore_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)

	result := callToolResult(c, cl, "meme_similar", map[string]any{"id": "does-not-exist"})
	c.Assert(result.IsError, qt.IsTrue)
}

// ---------------------------------------------------------------------------
// Unknown tool
// ---------------------------------------------------------------------------

func TestMCPUnknownTool_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c)

	req := mcp.CallToolRequest{}
	req.Params.Name = "meme_nonexistent"
	_, err := cl.CallTool(context.Background(), req)
	c.Assert(err, qt.IsNotNil)
}
