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

func TestEnvDefaultAppends(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/environment"] = ""

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnvDefault{Key: "EDITOR", Value: "nvim"})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.Applied))
	assert.Contains(t, mem.Files["/etc/environment"], "EDITOR=nvim")
}

func TestEnvDefaultNeverOverwrites(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/environment"] = "EDITOR=emacs\n"

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnvDefault{Key: "EDITOR", Value: "nvim"})
	require.NoError(t, m.Run(context.Background()))

	assert.True(t, m.Results.AllSkipped())
	assert.Equal(t, "EDITOR=emacs\n", mem.Files["/etc/environment"])
}

func TestEnvDefaultKeysAreIndependent(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/environment"] = "EDITOR=emacs\n"

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(
		&EnvDefault{Key: "EDITOR", Value: "nvim"},
		&EnvDefault{Key: "BROWSER", Value: "firefox"},
	)
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.Skipped))
	assert.Equal(t, 1, m.Results.Count(report.Applied))
	assert.Contains(t, mem.Files["/etc/environment"], "EDITOR=emacs")
	assert.Contains(t, mem.Files["/etc/environment"], "BROWSER=firefox")
}
