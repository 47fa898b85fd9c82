package picker_test

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/picker"
	"github.com/go-ports/mememe/internal/screen"
)

// writePNG writes a w×h red PNG into dir and returns its path.
func writePNG(c *qt.C, dir string, w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	b, err := compose.EncodePNG(img)
	c.Assert(err, qt.IsNil)
	path := filepath.Join(dir, "photo.png")
	c.Assert(os.WriteFile(path, b, 0o600), qt.IsNil)
	return path
}

// pick runs p and returns the single result it delivered.
func pick(c *qt.C, p picker.File, source screen.Source) screen.PickResult {
	var got []screen.PickResult
	err := p.Pick(context.Background(), source, func(r screen.PickResult) { got = append(got, r) })
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 1)
	return got[0]
}

func TestFile_Pick(t *testing.T) {
	c := qt.New(t)

	c.Run("existing image completes", func(c *qt.C) {
		path := writePNG(c, t.TempDir(), 12, 7)
		res := pick(c, picker.File{Path: path}, picker.SourceLibrary)
		c.Assert(res.Outcome, qt.Equals, screen.OutcomeCompleted)
		c.Assert(res.Image.Bounds().Size(), qt.Equals, image.Pt(12, 7))
		c.Assert(res.Err, qt.IsNil)
	})

	c.Run("camera source reads the capture file", func(c *qt.C) {
		path := writePNG(c, t.TempDir(), 4, 4)
		res := pick(c, picker.File{Path: path}, picker.SourceCamera)
		c.Assert(res.Outcome, qt.Equals, screen.OutcomeCompleted)
	})

	c.Run("empty path is a cancel", func(c *qt.C) {
		res := pick(c, picker.File{Path: "  "}, picker.SourceLibrary)
		c.Assert(res.Outcome, qt.Equals, screen.OutcomeCanceled)
		c.Assert(res.Image, qt.IsNil)
	})

	c.Run("missing file fails", func(c *qt.C) {
		res := pick(c, picker.File{Path: filepath.Join(t.TempDir(), "nope.png")}, picker.SourceLibrary)
		c.Assert(res.Outcome, qt.Equals, screen.OutcomeFailed)
		c.Assert(res.Err, qt.ErrorIs, os.ErrNotExist)
	})

	c.Run("undecodable file fails", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		c.Assert(os.WriteFile(path, []byte("not an image"), 0o600), qt.IsNil)
		res := pick(c, picker.File{Path: path}, picker.SourceLibrary)
		c.Assert(res.Outcome, qt.Equals, screen.OutcomeFailed)
		c.Assert(res.Err, qt.IsNotNil)
	})
}

func TestFile_Pick_CanceledContext(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := picker.File{Path: "x.png"}.Pick(ctx, picker.SourceLibrary, func(screen.PickResult) { called = true })
	c.Assert(err, qt.ErrorIs, context.Canceled)
	c.Assert(called, qt.IsFalse)
}

func TestParseSource(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		in      string
		want    screen.Source
		wantErr bool
	}{
		{in: "", want: picker.SourceLibrary},
		{in: "library", want: picker.SourceLibrary},
		{in: "Album", want: picker.SourceLibrary},
		{in: "camera", want: picker.SourceCamera},
		{in: "scanner", wantErr: true},
	}
	for _, tt := range tests {
		c.Run(tt.in, func(c *qt.C) {
			got, err := picker.ParseSource(tt.in)
			if tt.wantErr {
				c.Assert(err, qt.ErrorMatches, `unknown image source .*`)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}
