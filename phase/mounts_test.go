package phase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/prompt"
	"github.com/archprep/archprep/pkg/report"
	"github.com/archprep/archprep/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMount = config.Mount{Device: "/dev/sdb1", MountPoint: "/mnt/data", FSType: "ext4", Options: "defaults", Pass: 2}

func TestEnsureMountAppendsAndVerifies(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/fstab"] = "# fstab\n"

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnsureMount{Mount: testMount})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.Applied))
	assert.Contains(t, mem.Files["/etc/fstab"], testMount.Line())
	assert.True(t, mem.Dirs["/mnt/data"], "mount point dir must be created")
	assert.Equal(t, 1, mem.MountCalls, "mount table must be re-mounted to verify")
}

func TestEnsureMountNeverDuplicatesLine(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/fstab"] = "# fstab\n"

	for i := 0; i < 2; i++ {
		m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
		require.NoError(t, err)
		m.AddPhase(&EnsureMount{Mount: testMount})
		require.NoError(t, m.Run(context.Background()))
	}

	assert.Equal(t, 1, strings.Count(mem.Files["/etc/fstab"], testMount.Line()))
}

type mountCtxProvider struct {
	*state.Memory
	mountCtx context.Context
}

func (p *mountCtxProvider) MountAll(ctx context.Context) error {
	p.mountCtx = ctx
	return p.Memory.MountAll(ctx)
}

type runCtxKey struct{}

func TestEnsureMountVerifyUsesRunContext(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/fstab"] = "# fstab\n"
	prov := &mountCtxProvider{Memory: mem}

	s := testSession(t, mem, &prompt.Canned{})
	s.State = prov

	m, err := NewManager(s)
	require.NoError(t, err)
	m.AddPhase(&EnsureMount{Mount: testMount})

	ctx := context.WithValue(context.Background(), runCtxKey{}, "run")
	require.NoError(t, m.Run(ctx))

	require.NotNil(t, prov.mountCtx)
	assert.Equal(t, "run", prov.mountCtx.Value(runCtxKey{}), "verify must inherit the run context")
}

func TestEnsureMountRollsBackOnVerifyFailure(t *testing.T) {
	mem := state.NewMemory()
	mem.Files["/etc/fstab"] = "# fstab\n"
	mem.MountAllErr = fmt.Errorf("mount: /mnt/data: special device /dev/sdb1 does not exist")

	m, err := NewManager(testSession(t, mem, &prompt.Canned{}))
	require.NoError(t, err)
	m.AddPhase(&EnsureMount{Mount: testMount})
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 1, m.Results.Count(report.FailedSoft))
	assert.Equal(t, "# fstab\n", mem.Files["/etc/fstab"], "fstab must be restored from backup")
}
