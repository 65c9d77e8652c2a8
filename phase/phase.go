// Package phase contains the configuration steps and the manager that
// sequences them.
package phase

import (
	"context"
	"os"
	"strings"

	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/backup"
	"github.com/archprep/archprep/pkg/prompt"
	"github.com/archprep/archprep/pkg/runner"
	"github.com/archprep/archprep/pkg/state"
	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
)

// Colorize is used to colorize the screen output
var Colorize = aurora.NewAurora(isatty.IsTerminal(os.Stdout.Fd()))

// Session carries the spec and the system capabilities shared by all phases.
// It is assembled once before the run and never swapped afterwards; the only
// mutable part is Facts, which phases use to hand results forward.
type Session struct {
	Config  *config.Config
	State   state.Provider
	Runner  runner.Runner
	Prompt  prompt.Prompter
	Backups *backup.Registry

	// DryRun is set by the manager; prompt-gated phases answer "would apply"
	// instead of blocking on input when it is true.
	DryRun bool

	Facts Facts
}

// Facts are findings made by earlier phases that later phases act on.
type Facts struct {
	// MirrorsChanged is set when the mirror list was rewritten this run.
	MirrorsChanged bool
}

// Phase is a single step of the provisioning sequence.
type Phase interface {
	Title() string
	Run(ctx context.Context) error
}

// Phases is a slice of phases
type Phases []Phase

// A phase that holds the session can implement Prepare to receive it.
type withsession interface {
	Prepare(*Session) error
}

// A phase can implement ShouldRun as its check predicate; returning false
// means the step is already satisfied (or declined) and apply never runs.
type conditional interface {
	ShouldRun() bool
}

// A phase can implement Verify to re-check its post-condition after a
// successful apply. A verify failure is handled like a soft apply failure.
type verifiable interface {
	Verify(ctx context.Context) error
}

// A phase can implement Rollback to restore the previous known-good state
// after a soft failure.
type rollbackable interface {
	Rollback() error
}

// A phase can implement Critical to mark its failure as hard; a hard failure
// aborts the remaining sequence with backups left in place.
type critical interface {
	Critical() bool
}

// A phase can implement CleanUp to release resources; cleanups run
// unconditionally when the sequence ends, in reverse order.
type cleanup interface {
	CleanUp()
}

// GenericPhase is a basic phase which gets the session via Prepare.
type GenericPhase struct {
	Session *Session
}

// Prepare the phase
func (p *GenericPhase) Prepare(s *Session) error {
	p.Session = s
	return nil
}

// Error collects multiple errors into one when a phase performs several
// independent sub-steps.
type Error struct {
	Errors []error
}

// AddError adds new error to the collection
func (e *Error) AddError(err error) {
	e.Errors = append(e.Errors, err)
}

// Count returns the current count of errors
func (e *Error) Count() int {
	return len(e.Errors)
}

// Error returns the combined stringified error
func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "\n")
}
