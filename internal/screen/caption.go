package screen

import (
	"fmt"

	"github.com/go-ports/mememe/internal/models"
)

// CaptionState is the editing state of one caption field.
type CaptionState int

const (
	// Placeholder shows the field's default text, unedited.
	Placeholder CaptionState = iota
	// Editing means the field gained focus and its placeholder was cleared.
	Editing
	// Edited means the user entered text, possibly the empty string.
	Edited
)

func (s CaptionState) String() string {
	switch s {
	case Placeholder:
		return "placeholder"
	case Editing:
		return "editing"
	case Edited:
		return "edited"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Caption is one caption field and its editing state.
type Caption struct {
	field models.Field
	text  string
	state CaptionState
}

// NewCaption returns a caption showing field's placeholder.
func NewCaption(field models.Field) Caption {
	return Caption{field: field, text: field.Default(), state: Placeholder}
}

func (c Caption) Field() models.Field { return c.field }
func (c Caption) Text() string        { return c.text }
func (c Caption) State() CaptionState { return c.state }

// Focus clears the text if it still equals the field's default. Text that
// differs from the default is left as it is.
func (c *Caption) Focus() {
	if c.text == c.field.Default() {
		c.text = ""
		c.state = Editing
	}
}

// SetText replaces the text; any string is accepted.
func (c *Caption) SetText(text string) {
	c.text = text
	c.state = Edited
}

// Reset restores the placeholder.
func (c *Caption) Reset() {
	*c = NewCaption(c.field)
}
