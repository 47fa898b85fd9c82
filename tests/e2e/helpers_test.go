package e2e_test

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-ports/mememe/internal/compose"
)

// writePhoto writes a w×h PNG split into two flat colours so fingerprints of
// different photos differ.
func writePhoto(t *testing.T, name string, w, h int, left, right color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	b, err := compose.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode photo: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

var (
	red  = color.RGBA{R: 220, A: 255}
	blue = color.RGBA{B: 220, A: 255}
)
