package phase

import (
	"context"
	"fmt"

	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/linefile"
)

// EnsureMount appends one device-to-mountpoint entry to the mount table.
// The entry is checked by exact-line presence, applied by append, verified
// by a full re-mount and rolled back to backup when the re-mount fails.
type EnsureMount struct {
	GenericPhase

	Mount config.Mount
}

// Title for the phase
func (p *EnsureMount) Title() string {
	return fmt.Sprintf("Mount %s on %s", p.Mount.Device, p.Mount.MountPoint)
}

// ShouldRun is false when the exact mount line is already present
func (p *EnsureMount) ShouldRun() bool {
	content, err := p.Session.State.ReadFile(p.Session.Config.Fstab)
	if err != nil {
		return true
	}
	return !linefile.HasLine(content, p.Mount.Line())
}

// Run the phase
func (p *EnsureMount) Run(_ context.Context) error {
	if err := p.Session.State.EnsureDir(p.Mount.MountPoint); err != nil {
		return err
	}

	path := p.Session.Config.Fstab
	if _, err := p.Session.Backups.Ensure(path); err != nil {
		return err
	}

	content, err := p.Session.State.ReadFile(path)
	if err != nil {
		return err
	}

	updated, changed := linefile.AppendLine(content, p.Mount.Line())
	if !changed {
		return nil
	}

	return p.Session.State.WriteFile(path, updated)
}

// Verify re-mounts everything in the mount table
func (p *EnsureMount) Verify(ctx context.Context) error {
	return p.Session.State.MountAll(ctx)
}

// Rollback restores the mount table from its backup
func (p *EnsureMount) Rollback() error {
	return p.Session.Backups.Restore(p.Session.Config.Fstab)
}
