package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/pacman"
	log "github.com/sirupsen/logrus"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InstallGroup installs one optional package group behind a single
// confirmation. Declining skips the whole group; the prompt is never asked
// when the group is already fully installed.
type InstallGroup struct {
	GenericPhase

	Group config.Group

	delta []string
}

// Prepare computes the group's delta
func (p *InstallGroup) Prepare(s *Session) error {
	p.Session = s
	installed, err := s.State.InstalledPackages(context.Background())
	if err != nil {
		return fmt.Errorf("query installed packages: %w", err)
	}
	p.delta = pacman.Plan(pacman.Set{Name: p.Group.Name, Packages: p.Group.Packages}, installed)
	return nil
}

// Title for the phase
func (p *InstallGroup) Title() string {
	titler := cases.Title(language.AmericanEnglish)
	return fmt.Sprintf("Install %s Packages", titler.String(p.Group.Name))
}

// ShouldRun asks the gating question unless the group is already satisfied.
// A dry run never prompts; an unanswered group counts as pending.
func (p *InstallGroup) ShouldRun() bool {
	if len(p.delta) == 0 {
		return false
	}
	if p.Session.DryRun {
		return true
	}

	ok, err := p.Session.Prompt.Confirm(p.Group.Question, p.Group.Default)
	if err != nil {
		log.Warnf("prompt failed, skipping %s group: %s", p.Group.Name, err)
		return false
	}
	if !ok {
		log.Infof("skipping %s group", p.Group.Name)
	}
	return ok
}

// Run the phase
func (p *InstallGroup) Run(ctx context.Context) error {
	log.Infof("installing: %s", strings.Join(p.delta, " "))
	if err := p.Session.State.InstallPackages(ctx, p.delta); err != nil {
		return err
	}

	if missing := p.Session.State.AuditPackages(ctx, p.delta); len(missing) > 0 {
		return fmt.Errorf("still missing after install: %s", strings.Join(missing, " "))
	}

	return nil
}
