package phase

import (
	"context"
	"fmt"

	"github.com/archprep/archprep/pkg/linefile"
)

// EnvDefault appends one key=value default to the environment file. An
// existing assignment for the key, even with a different value, is left
// untouched.
type EnvDefault struct {
	GenericPhase

	Key   string
	Value string
}

// Title for the phase
func (p *EnvDefault) Title() string {
	return fmt.Sprintf("Default %s to %s", p.Key, p.Value)
}

// ShouldRun is false when any assignment for the key exists
func (p *EnvDefault) ShouldRun() bool {
	content, err := p.Session.State.ReadFile(p.Session.Config.EnvironmentFile)
	if err != nil {
		return true
	}
	return !linefile.HasKey(content, p.Key)
}

// Run the phase
func (p *EnvDefault) Run(_ context.Context) error {
	path := p.Session.Config.EnvironmentFile

	if _, err := p.Session.Backups.Ensure(path); err != nil {
		return err
	}

	content, err := p.Session.State.ReadFile(path)
	if err != nil {
		return err
	}

	updated, changed := linefile.AppendKeyValue(content, p.Key, p.Value)
	if !changed {
		return nil
	}

	return p.Session.State.WriteFile(path, updated)
}

// Rollback restores the environment file from its backup
func (p *EnvDefault) Rollback() error {
	return p.Session.Backups.Restore(p.Session.Config.EnvironmentFile)
}
