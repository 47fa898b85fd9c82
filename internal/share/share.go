// Package share implements the share surfaces the editor hands composited
// memes to.
package share

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/markdown"
	"github.com/go-ports/mememe/internal/models"
	"github.com/go-ports/mememe/internal/screen"
)

// ChannelFile is the channel reported by Dir.
const ChannelFile = "file"

// Dir shares by writing the composited PNG into Path and, when Manifest is
// set, recording it in the directory's gallery.md.
type Dir struct {
	Path     string
	Manifest bool
}

// Share writes item and reports the outcome through done before returning.
// A write failure is reported as OutcomeFailed, not as an error.
func (d Dir) Share(ctx context.Context, item screen.ShareItem, done func(screen.ShareResult)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("share.Dir: %w", err)
	}

	path, err := d.write(item)
	if err != nil {
		slog.Warn("share: could not write meme", "dir", d.Path, "error", err)
		done(screen.ShareResult{Outcome: screen.OutcomeFailed, Channel: ChannelFile, Err: err})
		return nil
	}

	if d.Manifest {
		size := item.Image.Bounds().Size()
		entry := markdown.Entry{
			File:     filepath.Base(path),
			Top:      item.Top,
			Bottom:   item.Bottom,
			Width:    size.X,
			Height:   size.Y,
			SharedAt: time.Now().UTC(),
		}
		// The image is already out; a stale gallery does not fail the share.
		if err := markdown.WriteGalleryEntry(d.Path, entry); err != nil {
			slog.Warn("share: could not update gallery", "dir", d.Path, "error", err)
		}
	}

	done(screen.ShareResult{Outcome: screen.OutcomeCompleted, Channel: ChannelFile, Location: path})
	return nil
}

func (d Dir) write(item screen.ShareItem) (string, error) {
	if item.Image == nil {
		return "", models.ErrNoComposite
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil { // #nosec G301 -- shared memes are meant to be browsed
		return "", fmt.Errorf("share.Dir: %w", err)
	}
	b, err := compose.EncodePNG(item.Image)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.Path, FileName(time.Now()))
	if err := os.WriteFile(path, b, 0o644); err != nil { // #nosec G306 -- shared memes are meant to be browsed
		return "", fmt.Errorf("share.Dir: %w", err)
	}
	return path, nil
}

// FileName returns a unique PNG name for a meme shared at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("meme-%s-%s.png", t.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// Decline is the user dismissing the share sheet without choosing a channel.
type Decline struct{}

// Share reports OutcomeCanceled.
func (Decline) Share(_ context.Context, _ screen.ShareItem, done func(screen.ShareResult)) error {
	done(screen.ShareResult{Outcome: screen.OutcomeCanceled})
	return nil
}
