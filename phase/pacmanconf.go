package phase

import (
	"context"
	"fmt"

	"github.com/archprep/archprep/pkg/linefile"
	log "github.com/sirupsen/logrus"
)

// ConfOption ensures a single uncommented option line in pacman.conf. Each
// option is its own step so any subset can be satisfied independently and
// re-runs converge regardless of order.
type ConfOption struct {
	GenericPhase

	// Key is the option name, Value its setting; an empty Value means a
	// bare flag like Color.
	Key   string
	Value string
}

// Title for the phase
func (p *ConfOption) Title() string {
	if p.Value == "" {
		return fmt.Sprintf("Enable pacman option %s", p.Key)
	}
	return fmt.Sprintf("Set pacman option %s = %s", p.Key, p.Value)
}

// ShouldRun is false when the option line is already present
func (p *ConfOption) ShouldRun() bool {
	content, err := p.Session.State.ReadFile(p.Session.Config.PacmanConf)
	if err != nil {
		log.Debugf("could not read %s: %s", p.Session.Config.PacmanConf, err)
		return true
	}
	return !linefile.HasOption(content, p.Key, p.Value)
}

// Run the phase
func (p *ConfOption) Run(_ context.Context) error {
	path := p.Session.Config.PacmanConf

	if _, err := p.Session.Backups.Ensure(path); err != nil {
		return err
	}

	content, err := p.Session.State.ReadFile(path)
	if err != nil {
		return err
	}

	updated, changed := linefile.EnsureOption(content, p.Key, p.Value)
	if !changed {
		return nil
	}

	return p.Session.State.WriteFile(path, updated)
}

// Verify re-checks the option line after the edit
func (p *ConfOption) Verify(_ context.Context) error {
	content, err := p.Session.State.ReadFile(p.Session.Config.PacmanConf)
	if err != nil {
		return err
	}
	if !linefile.HasOption(content, p.Key, p.Value) {
		return fmt.Errorf("option %s not present after edit", p.Key)
	}
	return nil
}

// Rollback restores pacman.conf from its backup
func (p *ConfOption) Rollback() error {
	return p.Session.Backups.Restore(p.Session.Config.PacmanConf)
}
