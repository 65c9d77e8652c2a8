package cmd

import (
	"fmt"

	"github.com/archprep/archprep/action"
	"github.com/archprep/archprep/phase"

	"github.com/urfave/cli/v2"
)

var applyCommand = &cli.Command{
	Name:  "apply",
	Usage: "Apply the configuration to this machine",
	Flags: []cli.Flag{
		configFlag,
		dryRunFlag,
		&cli.BoolFlag{
			Name:  "skip-groups",
			Usage: "Skip the optional package group prompts",
		},
		&cli.BoolFlag{
			Name:  "skip-rices",
			Usage: "Skip the third-party rice menu",
		},
		debugFlag,
		traceFlag,
		analyticsFlag,
	},
	Before: actions(initLogging, initConfig, initManager, initAnalytics),
	After:  actions(closeAnalytics),
	Action: func(ctx *cli.Context) error {
		applyAction := action.NewApply(action.ApplyOptions{
			Manager:    ctx.Context.Value(ctxManagerKey{}).(*phase.Manager),
			SkipGroups: ctx.Bool("skip-groups"),
			SkipRices:  ctx.Bool("skip-rices"),
		})

		if err := applyAction.Run(ctx.Context); err != nil {
			return fmt.Errorf("apply failed - log file saved to %s: %w", ctx.Context.Value(ctxLogFileKey{}).(string), err)
		}

		return nil
	},
}
