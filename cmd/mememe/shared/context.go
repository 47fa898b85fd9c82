// Package shared holds the context passed to all CLI commands.
package shared

import "github.com/go-ports/mememe/internal/config"

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the mememe home directory.
	// When empty, resolution falls through to MEMEME_HOME env var → persisted config → ~/.mememe.
	Home string
}

// ResolveHome returns the home directory and where it came from.
func (c *Context) ResolveHome() (home, source string) {
	if c.Home != "" {
		return c.Home, "flag"
	}
	return config.ResolveHome()
}
