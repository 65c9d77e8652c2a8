package cmd

import (
	"github.com/archprep/archprep/action"
	"github.com/archprep/archprep/phase"

	"github.com/urfave/cli/v2"
)

var planCommand = &cli.Command{
	Name:  "plan",
	Usage: "Show what apply would change without changing anything",
	Flags: []cli.Flag{
		configFlag,
		debugFlag,
		traceFlag,
		analyticsFlag,
	},
	Before: actions(initLogging, initConfig, initManager, initAnalytics),
	After:  actions(closeAnalytics),
	Action: func(ctx *cli.Context) error {
		planAction := action.Plan{
			Manager: ctx.Context.Value(ctxManagerKey{}).(*phase.Manager),
		}

		return planAction.Run(ctx.Context)
	},
}
