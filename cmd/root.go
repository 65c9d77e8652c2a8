package cmd

import (
	"github.com/urfave/cli/v2"
)

// App is the main urfave/cli.App for archprep
var App = &cli.App{
	Name:  "archprep",
	Usage: "Arch Linux post-install provisioning tool",
	Flags: []cli.Flag{
		debugFlag,
		traceFlag,
	},
	Commands: []*cli.Command{
		versionCommand,
		applyCommand,
		planCommand,
	},
}
