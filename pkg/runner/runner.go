// Package runner wraps invocation of external binaries with output capture,
// an optional hard timeout and exit classification. Everything the sequencer
// shells out to (pacman, reflector, systemctl, mount, the dotfile applier,
// add-on installers) goes through here.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/alessio/shellescape"
	"github.com/archprep/archprep/internal/shell"
	log "github.com/sirupsen/logrus"
)

// Status classifies how an invocation ended.
type Status int

const (
	// Success means the command exited zero.
	Success Status = iota
	// TimedOut means the deadline elapsed and the process group was killed.
	TimedOut
	// Exited means the command ran but exited non-zero.
	Exited
	// StartFailed means the command could not be started at all.
	StartFailed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case TimedOut:
		return "timeout"
	case Exited:
		return "non-zero exit"
	case StartFailed:
		return "failed to start"
	default:
		return "unknown"
	}
}

// Command describes one external invocation.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration
	Dir     string
	Env     []string
	Stdin   string
}

// Parse builds a Command from a shell-like command string out of the spec.
func Parse(line string) (Command, error) {
	parts, err := shell.Split(line)
	if err != nil {
		return Command{}, err
	}
	if len(parts) == 0 {
		return Command{}, errors.New("empty command")
	}
	return Command{Path: parts[0], Args: parts[1:]}, nil
}

// String returns the command as a quoted shell-safe string for logging.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Path}, c.Args...))
}

// Result carries the outcome and captured output of an invocation.
type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Success is true when the command exited zero.
func (r Result) Success() bool {
	return r.Status == Success
}

// Runner runs commands. The live implementation is Exec; tests substitute
// scripted fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// Exec runs commands on the local machine.
type Exec struct{}

// Run executes the command, capturing output. When the command carries a
// timeout the whole process group is killed once it elapses.
func (e Exec) Run(ctx context.Context, cmd Command) Result {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	log.Debugf("executing: %s", cmd.String())

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	// Extra variables extend the inherited environment rather than replace
	// it, so child tools keep PATH and HOME.
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		c.Stdin = bytes.NewBufferString(cmd.Stdin)
	}
	// Run children in their own process group so a timeout takes down
	// anything the tool spawned, not just the tool itself.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}

	switch {
	case err == nil:
		res.Status = Success
	case ctx.Err() != nil:
		res.Status = TimedOut
		log.Debugf("command timed out: %s", cmd.String())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Status = Exited
			res.ExitCode = exitErr.ExitCode()
			log.Debugf("command exited %d: %s", res.ExitCode, cmd.String())
		} else {
			res.Status = StartFailed
			log.Debugf("command failed to start: %s: %v", cmd.String(), err)
		}
	}

	return res
}
