package version

import (
	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: publicatie version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
