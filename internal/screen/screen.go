// Package screen holds the state of the meme editor screen: the source photo,
// both caption fields, share gating and the modal picker and share flows.
//
// A Screen is driven by discrete events from a single event thread. It does
// no locking of its own; callers serialize access, and modal completion
// callbacks must be delivered on that same thread.
package screen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/models"
)

var (
	// ErrSourceUnavailable is returned when the requested picker source cannot be used.
	ErrSourceUnavailable = errors.New("image source unavailable")
	// ErrModalActive is returned when a picker or share flow is already presented.
	ErrModalActive = errors.New("a modal flow is already active")
	// ErrNoFocus is returned when text is typed with no caption focused.
	ErrNoFocus = errors.New("no caption field has focus")
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Source selects where the picker acquires an image from.
type Source int

const (
	SourceLibrary Source = iota
	SourceCamera
)

func (s Source) String() string {
	if s == SourceCamera {
		return "camera"
	}
	return "library"
}

// Outcome is the terminal state of a modal flow.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCanceled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// PickResult is delivered once when a picker flow ends.
type PickResult struct {
	Outcome Outcome
	Image   image.Image
	Err     error
}

// ShareResult is delivered once when a share flow ends. Channel and Location
// name where the image went and are informational only.
type ShareResult struct {
	Outcome  Outcome
	Channel  string
	Location string
	Err      error
}

// Picker presents an image picker and reports the result through done.
type Picker interface {
	Pick(ctx context.Context, source Source, done func(PickResult)) error
}

// ShareItem is what the share surface is handed: the composited image and
// the captions burned into it.
type ShareItem struct {
	Image  image.Image
	Top    string
	Bottom string
}

// Sharer presents item for export and reports through done.
type Sharer interface {
	Share(ctx context.Context, item ShareItem, done func(ShareResult)) error
}

// Store receives memes created by successful shares.
type Store interface {
	Append(ctx context.Context, m *models.Meme) error
}

// ---------------------------------------------------------------------------
// Screen
// ---------------------------------------------------------------------------

// Options configures a Screen.
type Options struct {
	Style compose.Style
	// Frame is the visible frame size; zero renders at the source's size.
	Frame      image.Point
	Background color.Color
	// CameraAvailable enables SourceCamera.
	CameraAvailable bool
}

type modalKind int

const (
	modalNone modalKind = iota
	modalPicker
	modalShare
)

func (m modalKind) String() string {
	switch m {
	case modalPicker:
		return "picker"
	case modalShare:
		return "share"
	}
	return ""
}

// ShareReport describes how the most recent share flow ended.
type ShareReport struct {
	Outcome  Outcome
	Channel  string
	Location string
	// Meme is set when the share completed and the meme was stored.
	Meme *models.Meme
	Err  error
}

// Screen is the meme editor screen.
type Screen struct {
	opts Options

	source   image.Image
	captions [2]Caption
	focus    models.Field
	focused  bool
	canShare bool

	navbarHidden  bool
	toolbarHidden bool
	originY       int

	modal modalKind
	token uint64

	lastPick  *PickResult
	lastShare *ShareReport
}

// New returns a screen in its initial state: no image, placeholder captions
// and share disabled.
func New(opts Options) *Screen {
	s := &Screen{opts: opts}
	s.captions = [2]Caption{NewCaption(models.FieldTop), NewCaption(models.FieldBottom)}
	return s
}

// SetChromeHidden shows or hides the navigation bar and toolbar.
func (s *Screen) SetChromeHidden(hidden bool) {
	s.navbarHidden = hidden
	s.toolbarHidden = hidden
}

// ChromeHidden reports whether the bars are hidden.
func (s *Screen) ChromeHidden() bool { return s.navbarHidden && s.toolbarHidden }

// CanShare reports whether the share action is enabled.
func (s *Screen) CanShare() bool { return s.canShare }

// CameraEnabled reports whether the camera source may be picked from.
func (s *Screen) CameraEnabled() bool { return s.opts.CameraAvailable }

// Source returns the current source image, or nil.
func (s *Screen) Source() image.Image { return s.source }

// Caption returns the caption for field.
func (s *Screen) Caption(field models.Field) Caption { return s.captions[field] }

// Focused returns the focused field, if any.
func (s *Screen) Focused() (models.Field, bool) { return s.focus, s.focused }

// OriginY is the vertical frame offset; negative while shifted for the keyboard.
func (s *Screen) OriginY() int { return s.originY }

// ModalActive reports whether a picker or share flow is presented.
func (s *Screen) ModalActive() bool { return s.modal != modalNone }

// LastPick returns the most recent picker result, if any.
func (s *Screen) LastPick() (PickResult, bool) {
	if s.lastPick == nil {
		return PickResult{}, false
	}
	return *s.lastPick, true
}

// LastShare returns how the most recent share flow ended, if any.
func (s *Screen) LastShare() (ShareReport, bool) {
	if s.lastShare == nil {
		return ShareReport{}, false
	}
	return *s.lastShare, true
}

// ---------------------------------------------------------------------------
// Caption editing
// ---------------------------------------------------------------------------

// Focus gives field input focus. Moving focus off the bottom field restores
// the frame offset.
func (s *Screen) Focus(field models.Field) {
	if s.focused && s.focus == field {
		return
	}
	s.blur()
	s.focus = field
	s.focused = true
	s.captions[field].Focus()
}

// Type sets the text of the focused caption.
func (s *Screen) Type(text string) error {
	if !s.focused {
		return ErrNoFocus
	}
	s.captions[s.focus].SetText(text)
	return nil
}

// Return relinquishes focus without touching the text.
func (s *Screen) Return() {
	s.blur()
}

func (s *Screen) blur() {
	if s.focused && s.focus == models.FieldBottom {
		s.originY = 0
	}
	s.focused = false
}

// ---------------------------------------------------------------------------
// Modal flows
// ---------------------------------------------------------------------------

func (s *Screen) begin(kind modalKind) uint64 {
	s.token++
	s.modal = kind
	return s.token
}

// end closes the modal identified by token. It reports false for a modal that
// was already completed or dismissed.
func (s *Screen) end(token uint64) bool {
	if s.modal == modalNone || token != s.token {
		return false
	}
	s.modal = modalNone
	return true
}

// OpenPicker presents p. A completed result carrying an image replaces the
// source and enables share; any other result changes nothing.
func (s *Screen) OpenPicker(ctx context.Context, p Picker, source Source) error {
	if s.modal != modalNone {
		return ErrModalActive
	}
	if source == SourceCamera && !s.opts.CameraAvailable {
		return fmt.Errorf("screen.OpenPicker: %s: %w", source, ErrSourceUnavailable)
	}

	token := s.begin(modalPicker)
	if err := p.Pick(ctx, source, func(res PickResult) { s.completePick(token, res) }); err != nil {
		s.end(token)
		return fmt.Errorf("screen.OpenPicker: %w", err)
	}
	return nil
}

func (s *Screen) completePick(token uint64, res PickResult) {
	if !s.end(token) {
		slog.Debug("screen: ignoring stale picker result", "outcome", res.Outcome)
		return
	}
	if res.Outcome == OutcomeCompleted && res.Image == nil {
		slog.Warn("screen: picker completed without an image")
		res = PickResult{Outcome: OutcomeFailed, Err: models.ErrNoSourceImage}
	}
	s.lastPick = &res
	if res.Outcome != OutcomeCompleted {
		return
	}
	s.source = res.Image
	s.canShare = true
}

// Render flattens the current composition with chrome hidden.
func (s *Screen) Render() (*image.RGBA, error) {
	if s.source == nil {
		return nil, models.ErrNoSourceImage
	}
	comp := compose.Composition{
		Source:     s.source,
		Top:        s.captions[models.FieldTop].Text(),
		Bottom:     s.captions[models.FieldBottom].Text(),
		Size:       s.opts.Frame,
		Background: s.opts.Background,
	}
	return compose.Snapshot(s, func() (*image.RGBA, error) {
		return compose.Render(comp, s.opts.Style)
	})
}

// Share renders the current meme and presents it through sh. Only a
// completed share builds a meme, from the captions as rendered, and appends
// it to store.
func (s *Screen) Share(ctx context.Context, sh Sharer, store Store) error {
	if s.modal != modalNone {
		return ErrModalActive
	}
	if s.source == nil {
		return fmt.Errorf("screen.Share: %w", models.ErrNoSourceImage)
	}

	original := s.source
	top := s.captions[models.FieldTop].Text()
	bottom := s.captions[models.FieldBottom].Text()
	img, err := s.Render()
	if err != nil {
		return fmt.Errorf("screen.Share: %w", err)
	}

	token := s.begin(modalShare)
	done := func(res ShareResult) {
		s.completeShare(ctx, token, res, store, func() (*models.Meme, error) {
			return models.NewMeme(top, bottom, original, img)
		})
	}
	if err := sh.Share(ctx, ShareItem{Image: img, Top: top, Bottom: bottom}, done); err != nil {
		s.end(token)
		return fmt.Errorf("screen.Share: %w", err)
	}
	return nil
}

func (s *Screen) completeShare(ctx context.Context, token uint64, res ShareResult, store Store, build func() (*models.Meme, error)) {
	if !s.end(token) {
		slog.Debug("screen: ignoring stale share result", "outcome", res.Outcome)
		return
	}
	report := &ShareReport{Outcome: res.Outcome, Channel: res.Channel, Location: res.Location, Err: res.Err}
	s.lastShare = report
	if res.Outcome != OutcomeCompleted {
		return
	}

	m, err := build()
	if err == nil {
		err = store.Append(ctx, m)
	}
	if err != nil {
		slog.Warn("screen: could not store shared meme", "error", err)
		report.Err = err
		return
	}
	report.Meme = m
}

// Cancel abandons the current meme: the image is cleared, captions return to
// their placeholders, share is disabled, focus is dropped, any modal is
// dismissed and the frame returns to rest.
func (s *Screen) Cancel() {
	s.source = nil
	for i := range s.captions {
		s.captions[i].Reset()
	}
	s.focused = false
	s.canShare = false
	s.modal = modalNone
	s.originY = 0
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// CaptionView is the externally visible state of one caption.
type CaptionView struct {
	Text  string `json:"text"`
	State string `json:"state"`
}

// View is a read-only snapshot of the screen.
type View struct {
	HasImage      bool        `json:"has_image"`
	ImageWidth    int         `json:"image_width,omitempty"`
	ImageHeight   int         `json:"image_height,omitempty"`
	Top           CaptionView `json:"top"`
	Bottom        CaptionView `json:"bottom"`
	Focus         string      `json:"focus"`
	CanShare      bool        `json:"can_share"`
	CameraEnabled bool        `json:"camera_enabled"`
	ChromeHidden  bool        `json:"chrome_hidden"`
	OriginY       int         `json:"origin_y"`
	Modal         string      `json:"modal"`
}

// View returns the current state.
func (s *Screen) View() View {
	v := View{
		HasImage:      s.source != nil,
		Top:           captionView(s.captions[models.FieldTop]),
		Bottom:        captionView(s.captions[models.FieldBottom]),
		CanShare:      s.canShare,
		CameraEnabled: s.opts.CameraAvailable,
		ChromeHidden:  s.ChromeHidden(),
		OriginY:       s.originY,
		Modal:         s.modal.String(),
	}
	if s.source != nil {
		size := s.source.Bounds().Size()
		v.ImageWidth, v.ImageHeight = size.X, size.Y
	}
	if s.focused {
		v.Focus = s.focus.String()
	}
	return v
}

func captionView(c Caption) CaptionView {
	return CaptionView{Text: c.Text(), State: c.State().String()}
}
