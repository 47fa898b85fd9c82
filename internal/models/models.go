// Package models defines the core data types for the meme editor.
package models

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Placeholder captions shown by an unedited caption field.
const (
	DefaultTopText    = "TOP"
	DefaultBottomText = "BOTTOM"
)

// ErrNoSourceImage is returned when an operation needs a source photo and none is present.
var ErrNoSourceImage = errors.New("no source image")

// ErrNoComposite is returned when a meme is built without a composited image.
var ErrNoComposite = errors.New("no composited image")

// ---------------------------------------------------------------------------
// Caption fields
// ---------------------------------------------------------------------------

// Field identifies one of the two caption fields.
type Field int

const (
	FieldTop Field = iota
	FieldBottom
)

// Fields lists the caption fields in display order.
var Fields = []Field{FieldTop, FieldBottom}

func (f Field) String() string {
	switch f {
	case FieldTop:
		return "top"
	case FieldBottom:
		return "bottom"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Default returns the placeholder text for the field.
func (f Field) Default() string {
	if f == FieldBottom {
		return DefaultBottomText
	}
	return DefaultTopText
}

// ParseField maps "top" or "bottom" (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return FieldTop, nil
	case "bottom":
		return FieldBottom, nil
	}
	return 0, fmt.Errorf("unknown caption field %q: want top or bottom", s)
}

// ---------------------------------------------------------------------------
// Meme record
// ---------------------------------------------------------------------------

// Meme is a shared meme: the source photo, both captions and the flattened
// result. A Meme is built once per successful share and never modified.
type Meme struct {
	ID         string
	TopText    string
	BottomText string
	Original   image.Image
	Composited image.Image
	CreatedAt  time.Time
}

// NewMeme constructs a Meme with a fresh ID and creation time.
func NewMeme(top, bottom string, original, composited image.Image) (*Meme, error) {
	if original == nil {
		return nil, ErrNoSourceImage
	}
	if composited == nil {
		return nil, ErrNoComposite
	}
	return &Meme{
		ID:         uuid.NewString(),
		TopText:    top,
		BottomText: bottom,
		Original:   original,
		Composited: composited,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Summary is the image-free view of a Meme returned by listing and search.
type Summary struct {
	ID         string
	TopText    string
	BottomText string
	Width      int
	Height     int
	CreatedAt  time.Time
	Score      float64
}
