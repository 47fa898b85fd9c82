// Package compose flattens a source photo and two styled captions into a
// single raster image.
//
// Rendering is CPU-only and works entirely in memory: the source is
// aspect-fitted into the visible frame, then each caption is rasterized into
// an alpha mask, dilated for the outline and painted onto the frame.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/go-ports/mememe/internal/models"
)

// ErrEmptyFrame is returned when neither the composition nor the source has a size.
var ErrEmptyFrame = errors.New("empty frame")

// Composition is what is currently visible on screen: the source photo with
// both captions over it, inside a frame of Size pixels.
type Composition struct {
	Source image.Image
	Top    string
	Bottom string
	// Size is the visible frame. A zero size renders at the source's own size.
	Size image.Point
	// Background fills the letterbox around the fitted source. Nil means black.
	Background color.Color
}

// Chrome is anything drawn on screen that must not appear in a snapshot.
type Chrome interface {
	SetChromeHidden(hidden bool)
}

// Snapshot hides chrome, runs render and restores chrome on every path,
// including a render error or panic.
func Snapshot(ch Chrome, render func() (*image.RGBA, error)) (*image.RGBA, error) {
	if ch != nil {
		ch.SetChromeHidden(true)
		defer ch.SetChromeHidden(false)
	}
	return render()
}

// Render flattens comp into a new image using st for both captions.
func Render(comp Composition, st Style) (*image.RGBA, error) {
	if comp.Source == nil {
		return nil, models.ErrNoSourceImage
	}

	size := comp.Size
	if size.X <= 0 || size.Y <= 0 {
		size = comp.Source.Bounds().Size()
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("compose.Render: %w", ErrEmptyFrame)
	}

	f, err := LoadFont(st.Font)
	if err != nil {
		return nil, err
	}
	if st.Size <= 0 {
		st.Size = DefaultSize
	}
	if st.Fill == nil {
		st.Fill = color.White
	}
	if st.Stroke == nil {
		st.Stroke = color.Black
	}

	dst := image.NewRGBA(image.Rectangle{Max: size})
	bg := comp.Background
	if bg == nil {
		bg = color.Black
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	sr := comp.Source.Bounds()
	draw.CatmullRom.Scale(dst, fitRect(sr.Size(), dst.Bounds()), comp.Source, sr, draw.Over, nil)

	margin := size.Y * 4 / 100
	if margin < 1 {
		margin = 1
	}
	if err := drawCaption(dst, f, st, comp.Top, true, margin); err != nil {
		return nil, err
	}
	if err := drawCaption(dst, f, st, comp.Bottom, false, margin); err != nil {
		return nil, err
	}
	return dst, nil
}

// fitRect returns the largest rectangle with the aspect ratio of src that
// fits in frame, centered.
func fitRect(src image.Point, frame image.Rectangle) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 {
		return image.Rectangle{}
	}
	fw, fh := frame.Dx(), frame.Dy()
	w, h := fw, src.Y*fw/src.X
	if h > fh {
		w, h = src.X*fh/src.Y, fh
	}
	x := frame.Min.X + (fw-w)/2
	y := frame.Min.Y + (fh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// ---------------------------------------------------------------------------
// Captions
// ---------------------------------------------------------------------------

func drawCaption(dst *image.RGBA, f *opentype.Font, st Style, text string, top bool, margin int) error {
	if text == "" {
		return nil
	}
	frame := dst.Bounds()

	size := st.Size
	face, err := newFace(f, size)
	if err != nil {
		return fmt.Errorf("compose.drawCaption: %w", err)
	}
	adv := font.MeasureString(face, text).Ceil()

	if maxWidth := frame.Dx() - 2*margin; maxWidth > 0 && adv > maxWidth {
		shrunk := size * float64(maxWidth) / float64(adv)
		if shrunk < minFontSize {
			shrunk = minFontSize
		}
		if shrunk < size {
			_ = face.Close()
			size = shrunk
			if face, err = newFace(f, size); err != nil {
				return fmt.Errorf("compose.drawCaption: %w", err)
			}
			adv = font.MeasureString(face, text).Ceil()
		}
	}
	defer face.Close()

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	var x int
	switch st.Align {
	case AlignLeft:
		x = frame.Min.X + margin
	case AlignRight:
		x = frame.Max.X - margin - adv
	default:
		x = frame.Min.X + (frame.Dx()-adv)/2
	}
	baseline := frame.Max.Y - margin - descent
	if top {
		baseline = frame.Min.Y + margin + ascent
	}

	glyphs := image.NewAlpha(frame)
	d := font.Drawer{Dst: glyphs, Src: image.Opaque, Face: face, Dot: fixed.P(x, baseline)}
	d.DrawString(text)

	r := strokeRadius(st.StrokeWidth, size)
	area := image.Rect(x-r, baseline-ascent-r, x+adv+r, baseline+descent+r).Intersect(frame)

	switch {
	case st.StrokeWidth < 0:
		paint(dst, dilate(glyphs, area, r), st.Stroke)
		paint(dst, glyphs, st.Fill)
	case st.StrokeWidth > 0:
		paint(dst, subtract(dilate(glyphs, area, r), glyphs), st.Stroke)
	default:
		paint(dst, glyphs, st.Fill)
	}
	return nil
}

func paint(dst *image.RGBA, mask *image.Alpha, c color.Color) {
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// dilate grows the coverage of mask by a disc of radius r, only inside area.
func dilate(mask *image.Alpha, area image.Rectangle, r int) *image.Alpha {
	out := image.NewAlpha(mask.Bounds())
	if r <= 0 {
		copy(out.Pix, mask.Pix)
		return out
	}
	rr := r * r
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			var maxA uint8
			for dy := -r; dy <= r && maxA < 0xff; dy++ {
				for dx := -r; dx <= r; dx++ {
					if dx*dx+dy*dy > rr {
						continue
					}
					if a := mask.AlphaAt(x+dx, y+dy).A; a > maxA {
						maxA = a
					}
				}
			}
			out.SetAlpha(x, y, color.Alpha{A: maxA})
		}
	}
	return out
}

// subtract returns a with b's coverage removed, saturating at zero.
func subtract(a, b *image.Alpha) *image.Alpha {
	out := image.NewAlpha(a.Bounds())
	for i := range out.Pix {
		if a.Pix[i] > b.Pix[i] {
			out.Pix[i] = a.Pix[i] - b.Pix[i]
		}
	}
	return out
}
