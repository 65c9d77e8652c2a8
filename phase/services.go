package phase

import (
	"context"
	"fmt"

	"github.com/archprep/archprep/config"
)

// EnableService enables one unit, conditioned on its owning package being
// installed. A missing package skips the step rather than failing it.
type EnableService struct {
	GenericPhase

	Service config.Service
}

// Title for the phase
func (p *EnableService) Title() string {
	return fmt.Sprintf("Enable service %s", p.Service.Name)
}

// ShouldRun only when the owning package is present and the unit is not
// yet enabled
func (p *EnableService) ShouldRun() bool {
	ctx := context.Background()
	if !p.Session.State.PackageInstalled(ctx, p.Service.Package) {
		return false
	}
	return !p.Session.State.ServiceEnabled(ctx, p.Service.Name)
}

// Run the phase
func (p *EnableService) Run(ctx context.Context) error {
	return p.Session.State.EnableService(ctx, p.Service.Name)
}
