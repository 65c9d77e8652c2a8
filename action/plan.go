package action

import (
	"context"

	"github.com/archprep/archprep/phase"
	"github.com/archprep/archprep/pkg/report"

	log "github.com/sirupsen/logrus"
)

type Plan struct {
	// Manager is the phase manager
	Manager *phase.Manager
}

// Run walks the sequence in dry-run mode: check predicates are evaluated
// against the live system but nothing is applied.
func (p Plan) Run(ctx context.Context) error {
	apply := NewApply(ApplyOptions{Manager: p.Manager, SkipRices: true})

	p.Manager.DryRun = true
	p.Manager.SetPhases(apply.Phases)

	if err := p.Manager.Run(ctx); err != nil {
		return err
	}

	log.Infof("plan:\n%s", p.Manager.Results.Summary())
	if n := p.Manager.Results.Count(report.WouldApply); n > 0 {
		log.Infof("%d step(s) would apply", n)
	} else {
		log.Info("nothing to do, the system already matches the configuration")
	}
	return nil
}
