package phase

import (
	"context"
	"testing"

	"github.com/archprep/archprep/pkg/prompt"
	"github.com/archprep/archprep/pkg/report"
	"github.com/archprep/archprep/pkg/runner"
	"github.com/archprep/archprep/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configuredSequence mirrors the phase order of a full run, minus the phases
// that touch the live host (preflight, keep-alive, dotfiles, rices).
func configuredSequence(s *Session) Phases {
	phases := Phases{
		&ConfOption{Key: "ParallelDownloads", Value: "10"},
		&ConfOption{Key: "Color"},
		&ConfOption{Key: "ILoveCandy"},
		&RankMirrors{},
		&RefreshDB{},
		&InstallBase{},
	}
	for _, mount := range s.Config.Mounts {
		phases = append(phases, &EnsureMount{Mount: mount})
	}
	for _, ev := range s.Config.Environment {
		phases = append(phases, &EnvDefault{Key: ev.Key, Value: ev.Value})
	}
	for _, group := range s.Config.Groups {
		phases = append(phases, &InstallGroup{Group: group})
	}
	for _, svc := range s.Config.Services {
		phases = append(phases, &EnableService{Service: svc})
	}
	return phases
}

func seededMemory() *state.Memory {
	mem := state.NewMemory()
	mem.Files["/etc/pacman.conf"] = stockPacmanConf
	mem.Files["/etc/pacman.d/mirrorlist"] = staleMirrorlist
	mem.Files["/etc/fstab"] = "# fstab\n"
	mem.Files["/etc/environment"] = ""
	return mem
}

func TestSecondRunConverges(t *testing.T) {
	mem := seededMemory()
	rank := &fakeRunner{handler: func(cmd runner.Command) runner.Result {
		require.NoError(t, mem.WriteFile("/etc/pacman.d/mirrorlist", rankedMirrorlist))
		return runner.Result{Status: runner.Success}
	}}

	s := testSession(t, mem, &prompt.Canned{Confirms: []bool{true}})
	s.Runner = rank
	m, err := NewManager(s)
	require.NoError(t, err)
	m.SetPhases(configuredSequence(s))
	require.NoError(t, m.Run(context.Background()))

	assert.Zero(t, m.Results.Count(report.FailedSoft))
	assert.Zero(t, m.Results.Count(report.FailedHard))
	assert.True(t, mem.Services["sddm.service"], "service of a group package must be enabled")
	assert.Equal(t, 3, mem.MountCalls)

	// fresh session over the same system state: everything is satisfied
	s2 := testSession(t, mem, &prompt.Canned{})
	s2.Runner = rank
	m2, err := NewManager(s2)
	require.NoError(t, err)
	m2.SetPhases(configuredSequence(s2))
	require.NoError(t, m2.Run(context.Background()))

	assert.True(t, m2.Results.AllSkipped(), "converged system must skip every phase:\n%s", m2.Results.Summary())
	assert.Len(t, rank.commands, 1, "ranking must not run again")
	assert.Len(t, mem.InstallCalls, 4, "no package transactions on the second run")
}

func TestDeclinedGroupLeavesServiceAlone(t *testing.T) {
	mem := seededMemory()
	rank := &fakeRunner{handler: func(cmd runner.Command) runner.Result {
		require.NoError(t, mem.WriteFile("/etc/pacman.d/mirrorlist", rankedMirrorlist))
		return runner.Result{Status: runner.Success}
	}}

	// decline every group, including the defaulted ones
	s := testSession(t, mem, &prompt.Canned{Confirms: []bool{false, false, false}})
	s.Runner = rank
	m, err := NewManager(s)
	require.NoError(t, err)
	m.SetPhases(configuredSequence(s))
	require.NoError(t, m.Run(context.Background()))

	assert.False(t, mem.Packages["sddm"])
	assert.Empty(t, mem.Services["sddm.service"], "service must not be enabled without its package")
	assert.True(t, mem.Services["NetworkManager.service"], "base-backed service still enabled")
}
