package phase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archprep/archprep/cache"
	"github.com/archprep/archprep/pkg/backup"
	"github.com/archprep/archprep/pkg/runner"
	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// targetUser resolves the user the user-level steps act for. Under sudo
// that is the invoking user, not root.
func targetUser() (name string, home string) {
	if su := os.Getenv("SUDO_USER"); su != "" {
		return su, filepath.Join("/home", su)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	return "", home
}

// ApplyDotfiles invokes the external configuration-application tool once at
// the end of the sequence. Files the tool is liable to clobber are backed up
// first, matched by the spec's glob patterns.
type ApplyDotfiles struct {
	GenericPhase

	markerPath string
}

// Prepare the phase
func (p *ApplyDotfiles) Prepare(s *Session) error {
	p.Session = s
	p.markerPath = cache.File("dotfiles-applied")
	return nil
}

// Title for the phase
func (p *ApplyDotfiles) Title() string {
	return "Apply dotfiles"
}

// ShouldRun is false without a configured command or after a previous
// successful application
func (p *ApplyDotfiles) ShouldRun() bool {
	if p.Session.Config.Dotfiles.Command == "" {
		return false
	}
	return !p.Session.State.FileExist(p.markerPath)
}

// Run the phase
func (p *ApplyDotfiles) Run(ctx context.Context) error {
	p.backupClobberTargets()

	user, home := targetUser()

	// $HOME in the configured command must resolve to the target user's
	// home, not root's, so expansion happens here rather than in the shell.
	line := os.Expand(p.Session.Config.Dotfiles.Command, func(name string) string {
		if name == "HOME" {
			return home
		}
		return os.Getenv(name)
	})

	cmd, err := runner.Parse(line)
	if err != nil {
		return fmt.Errorf("invalid dotfiles command: %w", err)
	}

	cmd.Dir = home
	if user != "" {
		cmd = runAs(user, cmd)
	}

	res := p.Session.Runner.Run(ctx, cmd)
	if !res.Success() {
		return fmt.Errorf("dotfiles command %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}

	return p.Session.State.WriteFile(p.markerPath, "applied\n")
}

// backupClobberTargets copies glob-matched files out of the way; a failed
// backup only warns, the application itself decides what to overwrite.
func (p *ApplyDotfiles) backupClobberTargets() {
	_, home := targetUser()
	dir := filepath.Join(cache.BackupDir(), "dotfiles")

	for _, pattern := range p.Session.Config.Dotfiles.BackupGlobs {
		matches, err := doublestar.FilepathGlob(filepath.Join(home, pattern))
		if err != nil {
			log.Debugf("bad backup glob %q: %s", pattern, err)
			continue
		}
		for _, match := range matches {
			if _, err := backup.Take(match, dir); err != nil {
				log.Warnf("could not back up %s: %s", match, err)
			}
		}
	}
}

// runAs wraps a command to run as another user.
func runAs(user string, cmd runner.Command) runner.Command {
	wrapped := cmd
	wrapped.Path = "sudo"
	wrapped.Args = append([]string{"-u", user, cmd.Path}, cmd.Args...)
	return wrapped
}
