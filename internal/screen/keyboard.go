package screen

import (
	"image"
	"log/slog"

	"github.com/go-ports/mememe/internal/models"
)

// KeyboardFrameEndKey holds the keyboard's final on-screen frame, an
// image.Rectangle, in a KeyboardNotification's UserInfo.
const KeyboardFrameEndKey = "keyboard_frame_end"

// KeyboardNotification is posted by the host when the on-screen keyboard
// appears or disappears.
type KeyboardNotification struct {
	UserInfo map[string]any
}

// NewKeyboardNotification returns a notification for a keyboard of the given height.
func NewKeyboardNotification(height int) KeyboardNotification {
	return KeyboardNotification{UserInfo: map[string]any{
		KeyboardFrameEndKey: image.Rect(0, 0, 0, height),
	}}
}

func (n KeyboardNotification) height() (int, bool) {
	r, ok := n.UserInfo[KeyboardFrameEndKey].(image.Rectangle)
	if !ok {
		return 0, false
	}
	return r.Dy(), true
}

// KeyboardWillShow shifts the frame up by the keyboard height while the
// bottom caption has focus. A frame that is already shifted stays put.
func (s *Screen) KeyboardWillShow(note KeyboardNotification) {
	if s.originY != 0 {
		return
	}
	if !s.focused || s.focus != models.FieldBottom {
		return
	}
	h, ok := note.height()
	if !ok {
		slog.Warn("screen: keyboard notification without frame geometry")
		return
	}
	s.originY = -h
}

// KeyboardWillHide returns the frame to rest.
func (s *Screen) KeyboardWillHide() {
	s.originY = 0
}
