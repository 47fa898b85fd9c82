// Package service implements the editor session that wires together
// configuration, the meme store, the editor screen and the share surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ports/mememe/internal/compose"
	"github.com/go-ports/mememe/internal/config"
	"github.com/go-ports/mememe/internal/db"
	"github.com/go-ports/mememe/internal/models"
	"github.com/go-ports/mememe/internal/picker"
	"github.com/go-ports/mememe/internal/screen"
	"github.com/go-ports/mememe/internal/search"
	"github.com/go-ports/mememe/internal/share"
)

// ErrPickFailed is returned by Compose when the image could not be picked.
var ErrPickFailed = errors.New("image pick did not complete")

// ErrShareFailed is returned by Compose when the share did not store a meme.
var ErrShareFailed = errors.New("share did not complete")

// Service owns one editor session. Every screen operation runs under a single
// mutex, so callers on different goroutines see one event thread.
type Service struct {
	Home     string
	ShareDir string
	Config   *config.MemeConfig

	database *db.DB
	screen   *screen.Screen
	mu       sync.Mutex
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.GetHome.
func New(home string) (*Service, error) {
	if home == "" {
		home = config.GetHome()
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	cfg, err := config.Load(filepath.Join(home, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}
	opts, err := ScreenOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}

	database, err := db.Open()
	if err != nil {
		return nil, fmt.Errorf("service.New: open store: %w", err)
	}

	return &Service{
		Home:     home,
		ShareDir: cfg.ShareDir(home),
		Config:   cfg,
		database: database,
		screen:   screen.New(opts),
	}, nil
}

// Close releases the store. Memes do not outlive the session.
func (s *Service) Close() error {
	return s.database.Close()
}

// ScreenOptions converts the configured style, frame and camera settings.
func ScreenOptions(cfg *config.MemeConfig) (screen.Options, error) {
	st := compose.DefaultStyle()
	if _, err := compose.LoadFont(cfg.Style.Font); err != nil {
		return screen.Options{}, fmt.Errorf("style.font: %w", err)
	}
	st.Font = cfg.Style.Font
	if cfg.Style.Size > 0 {
		st.Size = cfg.Style.Size
	}
	st.StrokeWidth = cfg.Style.StrokeWidth

	fill, err := compose.ParseColor(cfg.Style.Fill)
	if err != nil {
		return screen.Options{}, fmt.Errorf("style.fill: %w", err)
	}
	stroke, err := compose.ParseColor(cfg.Style.Stroke)
	if err != nil {
		return screen.Options{}, fmt.Errorf("style.stroke: %w", err)
	}
	align, err := compose.ParseAlign(cfg.Style.Align)
	if err != nil {
		return screen.Options{}, fmt.Errorf("style.align: %w", err)
	}
	st.Fill, st.Stroke, st.Align = fill, stroke, align

	opts := screen.Options{
		Style:           st,
		Frame:           image.Pt(cfg.Frame.Width, cfg.Frame.Height),
		CameraAvailable: cfg.Camera.Available,
	}
	if cfg.Frame.Background != "" {
		bg, err := compose.ParseColor(cfg.Frame.Background)
		if err != nil {
			return screen.Options{}, fmt.Errorf("frame.background: %w", err)
		}
		opts.Background = bg
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// PickResult reports how a pick ended and the resulting screen state.
type PickResult struct {
	Outcome string      `json:"outcome"`
	Error   string      `json:"error,omitempty"`
	State   screen.View `json:"state"`
}

// ShareResult reports how a share ended and the meme it stored, if any.
type ShareResult struct {
	Outcome  string      `json:"outcome"`
	Channel  string      `json:"channel,omitempty"`
	Location string      `json:"location,omitempty"`
	MemeID   string      `json:"meme_id,omitempty"`
	Error    string      `json:"error,omitempty"`
	State    screen.View `json:"state"`
}

// ---------------------------------------------------------------------------
// Screen events
// ---------------------------------------------------------------------------

// Pick opens the file picker on path. An empty path is a dismissed picker.
func (s *Service) Pick(ctx context.Context, path string, source screen.Source) (*PickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pick(ctx, path, source)
}

func (s *Service) pick(ctx context.Context, path string, source screen.Source) (*PickResult, error) {
	if err := s.screen.OpenPicker(ctx, picker.File{Path: path}, source); err != nil {
		return nil, fmt.Errorf("service.Pick: %w", err)
	}
	res := &PickResult{State: s.screen.View()}
	if last, ok := s.screen.LastPick(); ok {
		res.Outcome = last.Outcome.String()
		if last.Err != nil {
			res.Error = last.Err.Error()
		}
	}
	return res, nil
}

// Focus gives a caption field input focus.
func (s *Service) Focus(field models.Field) screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Focus(field)
	return s.screen.View()
}

// Type replaces the focused caption's text.
func (s *Service) Type(text string) (screen.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.screen.Type(text); err != nil {
		return s.screen.View(), fmt.Errorf("service.Type: %w", err)
	}
	return s.screen.View(), nil
}

// Return relinquishes caption focus.
func (s *Service) Return() screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Return()
	return s.screen.View()
}

// Caption focuses field, sets its text and returns, as one edit.
func (s *Service) Caption(field models.Field, text string) screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caption(field, text)
	return s.screen.View()
}

func (s *Service) caption(field models.Field, text string) {
	s.screen.Focus(field)
	_ = s.screen.Type(text) // focus was just given
	s.screen.Return()
}

// Keyboard delivers a keyboard show (height > 0) or hide (height == 0)
// notification. A negative height is a notification without geometry.
func (s *Service) Keyboard(height int) screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case height == 0:
		s.screen.KeyboardWillHide()
	case height < 0:
		s.screen.KeyboardWillShow(screen.KeyboardNotification{})
	default:
		s.screen.KeyboardWillShow(screen.NewKeyboardNotification(height))
	}
	return s.screen.View()
}

// Share presents the current meme on the file share surface, or declines the
// share sheet when decline is set.
//
//revive:disable:flag-parameter
func (s *Service) Share(ctx context.Context, decline bool) (*ShareResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sh screen.Sharer = share.Dir{Path: s.ShareDir, Manifest: s.Config.Share.Manifest}
	if decline {
		sh = share.Decline{}
	}
	return s.share(ctx, sh)
}

//revive:enable:flag-parameter

func (s *Service) share(ctx context.Context, sh screen.Sharer) (*ShareResult, error) {
	if err := s.screen.Share(ctx, sh, s.database); err != nil {
		return nil, fmt.Errorf("service.Share: %w", err)
	}
	res := &ShareResult{State: s.screen.View()}
	if report, ok := s.screen.LastShare(); ok {
		res.Outcome = report.Outcome.String()
		res.Channel = report.Channel
		res.Location = report.Location
		if report.Meme != nil {
			res.MemeID = report.Meme.ID
		}
		if report.Err != nil {
			res.Error = report.Err.Error()
		}
	}
	return res, nil
}

// Cancel abandons the meme being edited.
func (s *Service) Cancel() screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Cancel()
	return s.screen.View()
}

// State returns the current screen state.
func (s *Service) State() screen.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.View()
}

// ---------------------------------------------------------------------------
// Compose
// ---------------------------------------------------------------------------

// ComposeInput drives one pick, caption and share cycle. Nil captions keep
// their placeholders.
type ComposeInput struct {
	Image  string
	Top    *string
	Bottom *string
	// Dir overrides the share directory.
	Dir string
}

// Compose builds and shares one meme, then resets the screen.
func (s *Service) Compose(ctx context.Context, in ComposeInput) (*ShareResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Cancel()
	defer s.screen.Cancel()

	pick, err := s.pick(ctx, in.Image, picker.SourceLibrary)
	if err != nil {
		return nil, fmt.Errorf("service.Compose: %w", err)
	}
	if pick.Outcome != screen.OutcomeCompleted.String() {
		return nil, fmt.Errorf("service.Compose: %w: %s %s", ErrPickFailed, pick.Outcome, pick.Error)
	}

	if in.Top != nil {
		s.caption(models.FieldTop, *in.Top)
	}
	if in.Bottom != nil {
		s.caption(models.FieldBottom, *in.Bottom)
	}

	dir := s.ShareDir
	if in.Dir != "" {
		dir = in.Dir
	}
	res, err := s.share(ctx, share.Dir{Path: dir, Manifest: s.Config.Share.Manifest})
	if err != nil {
		return nil, fmt.Errorf("service.Compose: %w", err)
	}
	if res.MemeID == "" {
		return res, fmt.Errorf("service.Compose: %w: %s %s", ErrShareFailed, res.Outcome, res.Error)
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// Store queries
// ---------------------------------------------------------------------------

// List returns shared memes in the order they were created.
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Summary, error) {
	return s.database.List(ctx, offset, limit)
}

// Get fetches a meme by ID or unique prefix.
func (s *Service) Get(ctx context.Context, id string) (*models.Meme, error) {
	return s.database.Get(ctx, id)
}

// Search finds memes by caption text.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Summary, error) {
	return search.Captions(ctx, s.database, query, limit, 0)
}

// Similar returns memes whose source photo looks like id's.
func (s *Service) Similar(ctx context.Context, id string, limit int) ([]models.Summary, error) {
	return s.database.Similar(ctx, id, limit)
}

// Count returns how many memes the session has stored.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.database.Count(ctx)
}
