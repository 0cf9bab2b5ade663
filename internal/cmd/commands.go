package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/cmd/commands/migrate"
	"github.com/provincie-forge/publicatie/internal/cmd/commands/operator"
	"github.com/provincie-forge/publicatie/internal/cmd/commands/serve"
	versioncmd "github.com/provincie-forge/publicatie/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCommand := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: baseCommand}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{Command: baseCommand}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: baseCommand}, nil
		},
		"operator init-state": func() (cli.Command, error) {
			return &operator.InitStateCommand{Command: baseCommand}, nil
		},
		"operator export-zip": func() (cli.Command, error) {
			return &operator.ExportZipCommand{Command: baseCommand}, nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: baseCommand}, nil
		},
	}
}
