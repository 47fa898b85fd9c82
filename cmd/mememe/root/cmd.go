// Package rootcmd wires the root cobra.Command for the mememe CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	composecmd "github.com/go-ports/mememe/cmd/mememe/compose"
	configcmd "github.com/go-ports/mememe/cmd/mememe/config"
	editcmd "github.com/go-ports/mememe/cmd/mememe/edit"
	mcpcmd "github.com/go-ports/mememe/cmd/mememe/mcp"
	"github.com/go-ports/mememe/cmd/mememe/shared"
	versioncmd "github.com/go-ports/mememe/cmd/mememe/version"
)

// New creates and returns the root cobra.Command for the mememe CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "mememe",
		Short:         "mememe: caption a photo, share the meme",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(
		&ctx.Home, "home", "",
		"Override home directory (default: $MEMEME_HOME env → persisted config → ~/.mememe)",
	)

	root.AddCommand(
		composecmd.New(ctx).Cmd(),
		editcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
