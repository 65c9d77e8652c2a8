package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/archprep/archprep/pkg/pacman"
	log "github.com/sirupsen/logrus"
)

// InstallBase installs the mandatory package set. Only the delta between the
// requested set and the installed state is passed to the package manager, in
// a single transaction, and an audit afterwards re-queries every delta
// package to catch partial failures behind a clean exit code.
type InstallBase struct {
	GenericPhase

	delta []string
}

// Prepare computes the delta against the installed-package snapshot
func (p *InstallBase) Prepare(s *Session) error {
	p.Session = s
	installed, err := s.State.InstalledPackages(context.Background())
	if err != nil {
		return fmt.Errorf("query installed packages: %w", err)
	}
	p.delta = pacman.Plan(s.Config.Base, installed)
	return nil
}

// Title for the phase. The manager resolves titles before Prepare hands the
// session over, so this must not touch the session.
func (p *InstallBase) Title() string {
	return "Install base packages"
}

// ShouldRun is false when every requested package is already installed
func (p *InstallBase) ShouldRun() bool {
	return len(p.delta) > 0
}

// Run the phase
func (p *InstallBase) Run(ctx context.Context) error {
	log.Infof("installing: %s", strings.Join(p.delta, " "))
	if err := p.Session.State.InstallPackages(ctx, p.delta); err != nil {
		return err
	}

	if missing := p.Session.State.AuditPackages(ctx, p.delta); len(missing) > 0 {
		return fmt.Errorf("still missing after install: %s", strings.Join(missing, " "))
	}

	return nil
}
