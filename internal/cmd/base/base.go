package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command carries the dependencies shared by all CLI commands.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// NewCommand returns a base command with the given logger and UI.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
	}
}

// FlagSet wraps flag.FlagSet with help rendering for command Help() output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a FlagSet wrapping f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help renders the defined flags as an indented usage block.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	buf.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		buf.WriteString("  -" + fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			buf.WriteString(" (default: " + fl.DefValue + ")")
		}
		buf.WriteString("\n      " + fl.Usage + "\n")
	})
	return buf.String()
}
