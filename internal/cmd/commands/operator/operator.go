// Package operator holds maintenance subcommands that act directly on the
// database, outside the normal API surface.
package operator

import (
	"github.com/mitchellh/cli"

	"github.com/provincie-forge/publicatie/internal/cmd/base"
)

// Command is the bare "operator" namespace. Running it just prints help for
// the subcommands.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: publicatie operator <subcommand> [options]

  This command groups subcommands for operators to interact with the
  publication database directly. Run "publicatie operator <subcommand> -h"
  for more information on a subcommand.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
