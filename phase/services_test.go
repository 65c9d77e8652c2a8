package phase

import (
	"context"
	"testing"

	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/prompt"
	"github.com/archprep/archprep/pkg/report"
	"github.com/archprep/archprep/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableServiceWhenPackagePresent(t *testing.T) {
	mem := state.NewMemory()
	mem.Packages["networkmanager"] = true

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnableService{Service: config.Service{Name: "NetworkManager.service", Package: "networkmanager"}})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.Applied))
	assert.Equal(t, []string{"NetworkManager.service"}, mem.EnableCalls)
}

func TestEnableServiceSkipsWithoutPackage(t *testing.T) {
	mem := state.NewMemory()

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnableService{Service: config.Service{Name: "sddm.service", Package: "sddm"}})
	require.NoError(t, m.Run(context.Background()))

	assert.True(t, m.Results.AllSkipped())
	assert.Empty(t, mem.EnableCalls)
}

func TestEnableServiceSkipsWhenAlreadyEnabled(t *testing.T) {
	mem := state.NewMemory()
	mem.Packages["openssh"] = true
	mem.Services["sshd.service"] = true

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnableService{Service: config.Service{Name: "sshd.service", Package: "openssh"}})
	require.NoError(t, m.Run(context.Background()))

	assert.True(t, m.Results.AllSkipped())
	assert.Empty(t, mem.EnableCalls)
}
