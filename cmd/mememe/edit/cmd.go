// Package editcmd implements the `mememe edit` command: an interactive editor
// session driven one event per line from stdin.
package editcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/mememe/cmd/mememe/shared"
	"github.com/go-ports/mememe/internal/models"
	"github.com/go-ports/mememe/internal/picker"
	"github.com/go-ports/mememe/internal/screen"
	"github.com/go-ports/mememe/internal/service"
)

const help = `Commands:
  pick [path]          pick a photo from the library; no path dismisses the picker
  camera <path>        capture a photo (needs camera.available)
  focus top|bottom     focus a caption field
  type [text]          replace the focused caption's text
  return               relinquish focus
  keyboard <height>    the keyboard appears; "keyboard hide" dismisses it
  share                render and share to the share directory
  decline              open the share sheet and dismiss it
  cancel               abandon the current meme
  state                show the screen
  list                 list memes shared this session
  search <query>       search captions
  similar <id>         memes with a similar photo
  help                 this text
  quit                 end the session`

// Command implements `mememe edit`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the edit command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "edit",
		Short: "Start an interactive editor session on stdin",
		Long:  "Start an interactive editor session. Memes live until the session ends.\n\n" + help,
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	home, _ := c.ctx.ResolveHome()
	svc, err := service.New(home)
	if err != nil {
		return err
	}
	defer svc.Close()

	s := &session{svc: svc, out: cmd.OutOrStdout()}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if !s.dispatch(cmd.Context(), scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

type session struct {
	svc *service.Service
	out io.Writer
}

// dispatch runs one command line. It returns false when the session ends.
func (s *session) dispatch(ctx context.Context, line string) bool { //nolint:gocyclo // one case per command
	verb, arg := splitLine(line)
	var err error

	switch verb {
	case "":
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(s.out, help)
	case "pick":
		err = s.pick(ctx, arg, picker.SourceLibrary)
	case "camera":
		err = s.pick(ctx, arg, picker.SourceCamera)
	case "focus":
		var field models.Field
		if field, err = models.ParseField(arg); err == nil {
			s.printState(s.svc.Focus(field))
		}
	case "type":
		var v screen.View
		if v, err = s.svc.Type(arg); err == nil {
			s.printState(v)
		}
	case "return":
		s.printState(s.svc.Return())
	case "keyboard":
		err = s.keyboard(arg)
	case "share", "decline":
		err = s.share(ctx, verb == "decline")
	case "cancel":
		s.printState(s.svc.Cancel())
	case "state":
		s.printState(s.svc.State())
	case "list":
		err = s.list(ctx)
	case "search":
		err = s.query(func() ([]models.Summary, error) { return s.svc.Search(ctx, arg, 5) })
	case "similar":
		err = s.query(func() ([]models.Summary, error) { return s.svc.Similar(ctx, arg, 5) })
	default:
		err = fmt.Errorf("unknown command %q (try help)", verb)
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return true
}

// splitLine returns the first word and the rest of the line. The rest keeps
// inner spacing so captions are typed verbatim.
func splitLine(line string) (verb, arg string) {
	line = strings.TrimLeft(line, " \t")
	verb, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(strings.TrimSpace(verb)), strings.TrimRight(arg, "\r\n")
}

func (s *session) pick(ctx context.Context, path string, source screen.Source) error {
	res, err := s.svc.Pick(ctx, strings.TrimSpace(path), source)
	if err != nil {
		return err
	}
	line := "pick " + res.Outcome
	if res.Error != "" {
		line += ": " + res.Error
	}
	fmt.Fprintln(s.out, line)
	s.printState(res.State)
	return nil
}

func (s *session) keyboard(arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "hide" {
		s.printState(s.svc.Keyboard(0))
		return nil
	}
	h, err := strconv.Atoi(arg)
	if err != nil || h <= 0 {
		return fmt.Errorf("keyboard wants a positive height or \"hide\", got %q", arg)
	}
	s.printState(s.svc.Keyboard(h))
	return nil
}

//revive:disable:flag-parameter
func (s *session) share(ctx context.Context, decline bool) error {
	res, err := s.svc.Share(ctx, decline)
	if err != nil {
		return err
	}
	line := "share " + res.Outcome
	if res.MemeID != "" {
		line += ": meme " + res.MemeID
	}
	if res.Location != "" {
		line += " -> " + res.Location
	}
	if res.Error != "" {
		line += " (" + res.Error + ")"
	}
	fmt.Fprintln(s.out, line)
	return nil
}

//revive:enable:flag-parameter

func (s *session) list(ctx context.Context) error {
	return s.query(func() ([]models.Summary, error) { return s.svc.List(ctx, 0, 0) })
}

func (s *session) query(run func() ([]models.Summary, error)) error {
	results, err := run()
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No memes found.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(s.out, " [%d] %s  %q / %q  %dx%d\n", i+1, shortID(r.ID), r.TopText, r.BottomText, r.Width, r.Height)
	}
	return nil
}

func (s *session) printState(v screen.View) {
	img := "none"
	if v.HasImage {
		img = fmt.Sprintf("%dx%d", v.ImageWidth, v.ImageHeight)
	}
	share := "disabled"
	if v.CanShare {
		share = "enabled"
	}
	focus := v.Focus
	if focus == "" {
		focus = "none"
	}
	fmt.Fprintf(s.out, "image: %s | top: %q (%s) | bottom: %q (%s) | focus: %s | share: %s | offset: %d\n",
		img, v.Top.Text, v.Top.State, v.Bottom.Text, v.Bottom.State, focus, share, v.OriginY)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
