package phase

import (
	"context"
	"testing"

	"github.com/archprep/archprep/pkg/prompt"
	"github.com/archprep/archprep/pkg/report"
	"github.com/archprep/archprep/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installEverything(s *Session, mem *state.Memory) {
	for _, p := range s.Config.Base.Packages {
		mem.Packages[p] = true
	}
	for _, g := range s.Config.Groups {
		for _, p := range g.Packages {
			mem.Packages[p] = true
		}
	}
}

func TestRefreshRunsWhenInstallsPending(t *testing.T) {
	mem := state.NewMemory()

	// mirrors untouched this run, but base packages are missing
	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&RefreshDB{})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.Applied))
	assert.Equal(t, 1, mem.RefreshCalls, "installing against a stale database is not allowed")
}

func TestRefreshRunsAfterMirrorChange(t *testing.T) {
	mem := state.NewMemory()
	s := testSession(t, mem, &prompt.Canned{})
	installEverything(s, mem)
	s.Facts.MirrorsChanged = true

	m, err := NewManager(s)
	require.NoError(t, err)
	m.AddPhase(&RefreshDB{})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, mem.RefreshCalls)
}

func TestRefreshSkippedWhenConverged(t *testing.T) {
	mem := state.NewMemory()
	s := testSession(t, mem, &prompt.Canned{})
	installEverything(s, mem)

	m, err := NewManager(s)
	require.NoError(t, err)
	m.AddPhase(&RefreshDB{})
	require.NoError(t, m.Run(context.Background()))

	assert.True(t, m.Results.AllSkipped())
	assert.Zero(t, mem.RefreshCalls)
}
