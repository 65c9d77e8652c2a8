package phase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/archprep/archprep/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// mirrorMarkerPrefix heads a ranked mirror list; the date suffix makes the
// step converge within a day while still re-ranking on later runs.
const mirrorMarkerPrefix = "## ranked by archprep on "

// RankMirrors replaces the mirror list with the ranking tool's output,
// bounded by a timeout. On timeout, failure or empty output the previous
// list is restored verbatim.
type RankMirrors struct {
	GenericPhase
}

// Title for the phase
func (p *RankMirrors) Title() string {
	return "Rank package mirrors"
}

// ShouldRun is false when the list was already ranked today
func (p *RankMirrors) ShouldRun() bool {
	content, err := p.Session.State.ReadFile(p.Session.Config.MirrorList)
	if err != nil {
		return true
	}
	return !strings.HasPrefix(content, p.marker())
}

// Run the phase
func (p *RankMirrors) Run(ctx context.Context) error {
	path := p.Session.Config.MirrorList

	if _, err := p.Session.Backups.Ensure(path); err != nil {
		return err
	}

	cmd, err := runner.Parse(p.Session.Config.MirrorCommand)
	if err != nil {
		return fmt.Errorf("invalid mirror command: %w", err)
	}
	cmd.Args = append(cmd.Args, "--save", path)
	cmd.Timeout = time.Duration(p.Session.Config.MirrorTimeout)

	log.Infof("ranking mirrors, this can take up to %s", cmd.Timeout)
	res := p.Session.Runner.Run(ctx, cmd)
	if !res.Success() {
		return fmt.Errorf("mirror ranking %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}

	content, err := p.Session.State.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("mirror ranking produced an empty list")
	}

	if err := p.Session.State.WriteFile(path, p.marker()+"\n"+content); err != nil {
		return err
	}

	p.Session.Facts.MirrorsChanged = true
	return nil
}

// Verify checks the ranked list still contains server entries
func (p *RankMirrors) Verify(_ context.Context) error {
	content, err := p.Session.State.ReadFile(p.Session.Config.MirrorList)
	if err != nil {
		return err
	}
	if !strings.Contains(content, "Server") {
		return fmt.Errorf("ranked mirror list contains no servers")
	}
	return nil
}

// Rollback restores the previous mirror list verbatim
func (p *RankMirrors) Rollback() error {
	p.Session.Facts.MirrorsChanged = false
	return p.Session.Backups.Restore(p.Session.Config.MirrorList)
}

func (p *RankMirrors) marker() string {
	return mirrorMarkerPrefix + time.Now().Format("2006-01-02")
}
