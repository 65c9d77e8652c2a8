package phase

import (
	"context"

	"github.com/archprep/archprep/pkg/runner"
)

// fakeRunner answers invocations from a handler and records every command.
type fakeRunner struct {
	handler  func(cmd runner.Command) runner.Result
	commands []runner.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) runner.Result {
	f.commands = append(f.commands, cmd)
	if f.handler != nil {
		return f.handler(cmd)
	}
	return runner.Result{Status: runner.Success}
}
