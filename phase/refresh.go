package phase

import (
	"context"
	"fmt"
)

// RefreshDB forces a package database refresh before anything installs. A
// stale sync database can 404 on rotated repo files, so the refresh runs
// whenever the mirror list changed this run or any configured package is
// still missing.
type RefreshDB struct {
	GenericPhase

	pending bool
}

// Prepare checks whether any configured package still needs installing
func (p *RefreshDB) Prepare(s *Session) error {
	p.Session = s

	installed, err := s.State.InstalledPackages(context.Background())
	if err != nil {
		return fmt.Errorf("query installed packages: %w", err)
	}

	requested := append([]string{}, s.Config.Base.Packages...)
	for _, g := range s.Config.Groups {
		requested = append(requested, g.Packages...)
	}
	for _, pkg := range requested {
		if !installed[pkg] {
			p.pending = true
			break
		}
	}
	return nil
}

// Title for the phase
func (p *RefreshDB) Title() string {
	return "Refresh package databases"
}

// ShouldRun when the mirror list was rewritten this run or installs are
// coming up
func (p *RefreshDB) ShouldRun() bool {
	return p.Session.Facts.MirrorsChanged || p.pending
}

// Run the phase
func (p *RefreshDB) Run(ctx context.Context) error {
	return p.Session.State.RefreshPackageDB(ctx)
}
