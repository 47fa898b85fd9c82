// Package composecmd implements the `mememe compose` command.
package composecmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/mememe/cmd/mememe/shared"
	"github.com/go-ports/mememe/internal/service"
)

// Command implements `mememe compose`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	image  string
	top    string
	bottom string
	out    string
}

// New creates the compose command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "compose",
		Short: "Caption a photo and share the meme in one step",
		Long: `Pick --image, set the captions and share the result to the share
directory. Captions that are not given keep their TOP/BOTTOM placeholders.`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	f := c.cmd.Flags()
	f.StringVar(&c.image, "image", "", "Path of the photo to caption (required)")
	f.StringVar(&c.top, "top", "", "Top caption")
	f.StringVar(&c.bottom, "bottom", "", "Bottom caption")
	f.StringVar(&c.out, "out", "", "Directory to write the meme to (default: configured share dir)")
	_ = c.cmd.MarkFlagRequired("image")

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

	in := service.ComposeInput{Image: c.image, Dir: c.out}
	if cmd.Flags().Changed("top") {
		in.Top = &c.top
	}
	if cmd.Flags().Changed("bottom") {
		in.Bottom = &c.bottom
	}

	res, err := svc.Compose(cmd.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrPickFailed) {
			return fmt.Errorf("could not load %s: %w", c.image, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Shared meme %s\n", res.MemeID)
	fmt.Fprintf(out, "  file: %s\n", res.Location)
	return nil
}
