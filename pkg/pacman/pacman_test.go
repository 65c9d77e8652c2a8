package pacman

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/archprep/archprep/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner pretends to be pacman over an in-memory package database.
type fakeRunner struct {
	mu          sync.Mutex
	installed   map[string]bool
	failInstall bool
	commands    []string
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) runner.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd.String())

	if cmd.Path != "pacman" {
		return runner.Result{Status: runner.StartFailed}
	}

	switch cmd.Args[0] {
	case "-Qq":
		if len(cmd.Args) == 1 {
			var names []string
			for name := range f.installed {
				names = append(names, name)
			}
			sort.Strings(names)
			return runner.Result{Status: runner.Success, Stdout: strings.Join(names, "\n")}
		}
		if f.installed[cmd.Args[1]] {
			return runner.Result{Status: runner.Success, Stdout: cmd.Args[1]}
		}
		return runner.Result{Status: runner.Exited, ExitCode: 1}
	case "-S":
		if f.failInstall {
			return runner.Result{Status: runner.Exited, ExitCode: 1, Stderr: "error: target not found"}
		}
		for _, name := range cmd.Args[3:] {
			f.installed[name] = true
		}
		return runner.Result{Status: runner.Success}
	case "-Syy":
		return runner.Result{Status: runner.Success}
	}
	return runner.Result{Status: runner.Exited, ExitCode: 1}
}

func TestSetValidate(t *testing.T) {
	assert.NoError(t, Set{Name: "base", Packages: []string{"git", "vim"}}.Validate())
	assert.Error(t, Set{Name: "empty"}.Validate())
	assert.Error(t, Set{Name: "dupes", Packages: []string{"git", "git"}}.Validate())
}

func TestPlanPreservesOrder(t *testing.T) {
	requested := Set{Name: "base", Packages: []string{"a", "b", "c"}}
	delta := Plan(requested, map[string]bool{"b": true})
	assert.Equal(t, []string{"a", "c"}, delta)
}

func TestPlanEmptyDelta(t *testing.T) {
	requested := Set{Name: "base", Packages: []string{"a", "b"}}
	assert.Empty(t, Plan(requested, map[string]bool{"a": true, "b": true}))
}

func TestInstallDelta(t *testing.T) {
	fake := &fakeRunner{installed: map[string]bool{"foo": true}}
	client := NewClient(fake)
	ctx := context.Background()

	installed, err := client.Installed(ctx)
	require.NoError(t, err)

	delta := Plan(Set{Name: "base", Packages: []string{"foo", "bar"}}, installed)
	assert.Equal(t, []string{"bar"}, delta)

	require.NoError(t, client.Install(ctx, delta))
	assert.True(t, fake.installed["bar"])

	// full delta in a single invocation
	var installs int
	for _, c := range fake.commands {
		if strings.HasPrefix(c, "pacman -S ") {
			installs++
		}
	}
	assert.Equal(t, 1, installs)
}

func TestInstallEmptyDeltaIsNoop(t *testing.T) {
	fake := &fakeRunner{installed: map[string]bool{}}
	client := NewClient(fake)
	require.NoError(t, client.Install(context.Background(), nil))
	assert.Empty(t, fake.commands)
}

func TestInstallFailure(t *testing.T) {
	fake := &fakeRunner{installed: map[string]bool{}, failInstall: true}
	client := NewClient(fake)
	err := client.Install(context.Background(), []string{"nosuchpkg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target not found")
}

func TestAuditFindsMissing(t *testing.T) {
	fake := &fakeRunner{installed: map[string]bool{"ok": true}}
	client := NewClient(fake)

	missing := client.Audit(context.Background(), []string{"ok", "gone", "also-gone"})
	sort.Strings(missing)
	assert.Equal(t, []string{"also-gone", "gone"}, missing)
}
