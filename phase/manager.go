package phase

import (
	"context"
	"fmt"

	"github.com/archprep/archprep/analytics"
	"github.com/archprep/archprep/pkg/report"
	log "github.com/sirupsen/logrus"
)

// Manager executes phases in order, applying the check-before-apply and
// backup-before-mutate discipline, continuing past soft failures and
// aborting on hard ones.
type Manager struct {
	Session *Session
	// DryRun evaluates check predicates only and records what would apply.
	DryRun bool
	// Results collects the per-phase outcomes of the last Run.
	Results report.Results

	phases Phases
}

// NewManager creates a new Manager for the session
func NewManager(s *Session) (*Manager, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return &Manager{Session: s}, nil
}

// AddPhase adds a Phase to Manager
func (m *Manager) AddPhase(p ...Phase) {
	m.phases = append(m.phases, p...)
}

// SetPhases replaces the phase list
func (m *Manager) SetPhases(p Phases) {
	m.phases = p
}

// Run executes all the added Phases in order. The returned error is non-nil
// only when a critical phase failed; soft failures are recorded in Results
// and the sequence continues past them.
func (m *Manager) Run(ctx context.Context) error {
	m.Results = nil
	m.Session.DryRun = m.DryRun

	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	for _, p := range m.phases {
		title := p.Title()

		log.Debugf("preparing phase '%s'", title)
		if ps, ok := p.(withsession); ok {
			if err := ps.Prepare(m.Session); err != nil {
				return fmt.Errorf("failed to prepare phase '%s': %w", title, err)
			}
		}

		if c, ok := p.(cleanup); ok {
			cleanups = append(cleanups, c.CleanUp)
		}

		if ctx.Err() != nil {
			return fmt.Errorf("sequence cancelled: %w", ctx.Err())
		}

		if c, ok := p.(conditional); ok && !c.ShouldRun() {
			log.Debugf("skipping phase '%s'", title)
			m.Results.Add(title, report.Skipped, "")
			continue
		}

		if m.DryRun {
			log.Infof(Colorize.Cyan("==> Would run phase: %s").String(), title)
			m.Results.Add(title, report.WouldApply, "")
			continue
		}

		log.Infof(Colorize.Green("==> Running phase: %s").String(), title)

		ev := &analytics.Phase{}
		_ = ev.Before(title)

		err := p.Run(ctx)
		if err == nil {
			if v, ok := p.(verifiable); ok {
				if verr := v.Verify(ctx); verr != nil {
					log.Warnf("phase '%s' verification failed: %s", title, verr)
					err = fmt.Errorf("verify: %w", verr)
				}
			}
		}
		_ = ev.After(err)

		if err == nil {
			m.Results.Add(title, report.Applied, "")
			continue
		}

		if c, ok := p.(critical); ok && c.Critical() {
			log.Errorf("phase '%s' failed: %s", title, err)
			m.Results.Add(title, report.FailedHard, err.Error())
			return fmt.Errorf("phase '%s' failed: %w", title, err)
		}

		if r, ok := p.(rollbackable); ok {
			if rerr := r.Rollback(); rerr != nil {
				log.Warnf("phase '%s' rollback failed: %s", title, rerr)
			}
		}
		log.Warnf("phase '%s' failed: %s - continuing", title, err)
		m.Results.Add(title, report.FailedSoft, err.Error())
	}

	return nil
}
