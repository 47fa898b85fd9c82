// Package picker acquires source photos from the local filesystem for the
// editor screen.
package picker

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/screen"
)

// Picker sources, re-exported for callers that do not otherwise need screen.
const (
	SourceLibrary = screen.SourceLibrary
	SourceCamera  = screen.SourceCamera
)

// ParseSource maps "library" or "camera" to a Source.
func ParseSource(s string) (screen.Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "library", "album":
		return SourceLibrary, nil
	case "camera":
		return SourceCamera, nil
	}
	return 0, fmt.Errorf("unknown image source %q: want library or camera", s)
}

// File picks the image stored at Path. Both sources read from the file; the
// camera source stands in for a capture written to disk. An empty Path is the
// user dismissing the picker.
type File struct {
	Path string
}

// Pick decodes the file and reports the result through done before returning.
func (f File) Pick(ctx context.Context, source screen.Source, done func(screen.PickResult)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("picker.Pick: %w", err)
	}

	path := strings.TrimSpace(f.Path)
	if path == "" {
		done(screen.PickResult{Outcome: screen.OutcomeCanceled})
		return nil
	}

	img, err := Load(path)
	if err != nil {
		slog.Debug("picker: could not load image", "source", source, "path", path, "error", err)
		done(screen.PickResult{Outcome: screen.OutcomeFailed, Err: err})
		return nil
	}
	done(screen.PickResult{Outcome: screen.OutcomeCompleted, Image: img})
	return nil
}

// Load opens and decodes the image at path.
func Load(path string) (image.Image, error) {
	fh, err := os.Open(path) // #nosec G304 -- path is chosen by the user picking an image
	if err != nil {
		return nil, fmt.Errorf("picker.Load: %w", err)
	}
	defer fh.Close()

	img, _, err := compose.DecodeImage(fh)
	if err != nil {
		return nil, fmt.Errorf("picker.Load %s: %w", path, err)
	}
	return img, nil
}
