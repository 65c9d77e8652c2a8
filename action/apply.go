package action

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/archprep/archprep/phase"
	"github.com/archprep/archprep/pkg/report"

	log "github.com/sirupsen/logrus"
)

type ApplyOptions struct {
	// Manager is the phase manager
	Manager *phase.Manager
	// SkipGroups answers no to every optional group prompt
	SkipGroups bool
	// SkipRices leaves the third-party rice menu out of the run
	SkipRices bool
}

type Apply struct {
	ApplyOptions
	Phases phase.Phases
}

// NewApply creates a new Apply action with the full provisioning sequence.
// The list of phases can be modified via the Phases field before Run.
func NewApply(opts ApplyOptions) *Apply {
	cfg := opts.Manager.Session.Config

	phases := phase.Phases{
		&phase.Preflight{},
		&phase.KeepAlive{},
		&phase.ConfOption{Key: "ParallelDownloads", Value: strconv.Itoa(cfg.ParallelDownloads)},
		&phase.ConfOption{Key: "Color"},
		&phase.ConfOption{Key: "ILoveCandy"},
		&phase.RankMirrors{},
		&phase.RefreshDB{},
		&phase.InstallBase{},
	}

	for _, mount := range cfg.Mounts {
		phases = append(phases, &phase.EnsureMount{Mount: mount})
	}
	for _, ev := range cfg.Environment {
		phases = append(phases, &phase.EnvDefault{Key: ev.Key, Value: ev.Value})
	}
	if !opts.SkipGroups {
		for _, group := range cfg.Groups {
			phases = append(phases, &phase.InstallGroup{Group: group})
		}
	}
	for _, svc := range cfg.Services {
		phases = append(phases, &phase.EnableService{Service: svc})
	}
	phases = append(phases, &phase.ApplyDotfiles{})
	if !opts.SkipRices {
		phases = append(phases, &phase.InstallRices{})
	}

	return &Apply{ApplyOptions: opts, Phases: phases}
}

// Run the Apply action. The returned error is non-nil only when a critical
// phase failed; soft failures are reported in the summary and the process
// still exits clean.
func (a Apply) Run(ctx context.Context) error {
	start := time.Now()

	a.Manager.SetPhases(a.Phases)

	if err := a.Manager.Run(ctx); err != nil {
		log.Info(phase.Colorize.Red("==> Apply failed").String())
		a.summarize()
		return err
	}

	duration := time.Since(start).Truncate(time.Second)
	log.Info(phase.Colorize.Green(fmt.Sprintf("==> Finished in %s", duration)).String())
	a.summarize()

	if a.Manager.Results.AllSkipped() {
		log.Info("nothing to do, the system already matches the configuration")
	}

	return nil
}

func (a Apply) summarize() {
	log.Infof("run summary:\n%s", a.Manager.Results.Summary())

	if n := a.Manager.Results.Count(report.FailedSoft); n > 0 {
		log.Warnf("%d step(s) failed and were skipped over, re-run to retry them", n)
	}

	if backups := a.Manager.Session.Backups.All(); len(backups) > 0 {
		log.Info("backups of modified files:")
		for _, b := range backups {
			log.Infof("  %s -> %s", b.Source, b.Path)
		}
	}
}
