package state

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/archprep/archprep/pkg/pacman"
	"github.com/archprep/archprep/pkg/runner"
	"golang.org/x/sys/unix"
)

// Local implements Provider against the local machine.
type Local struct {
	runner runner.Runner
	pacman *pacman.Client
}

// NewLocal returns a Provider for the local machine using the given runner.
func NewLocal(r runner.Runner) *Local {
	return &Local{runner: r, pacman: pacman.NewClient(r)}
}

func (l *Local) InstalledPackages(ctx context.Context) (map[string]bool, error) {
	return l.pacman.Installed(ctx)
}

func (l *Local) PackageInstalled(ctx context.Context, name string) bool {
	return l.pacman.IsInstalled(ctx, name)
}

func (l *Local) InstallPackages(ctx context.Context, pkgs []string) error {
	return l.pacman.Install(ctx, pkgs)
}

func (l *Local) RefreshPackageDB(ctx context.Context) error {
	return l.pacman.Refresh(ctx)
}

func (l *Local) AuditPackages(ctx context.Context, pkgs []string) []string {
	return l.pacman.Audit(ctx, pkgs)
}

func (l *Local) ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(content), nil
}

func (l *Local) WriteFile(path string, content string) error {
	mode := os.FileMode(0o644)
	if stat, err := os.Stat(path); err == nil {
		mode = stat.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (l *Local) FileExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (l *Local) EnsureDir(path string) error {
	err := os.MkdirAll(path, 0o755)
	if err == nil || os.IsExist(err) {
		if unix.Access(path, unix.W_OK) != nil {
			return fmt.Errorf("not writable: %s", path)
		}
		return nil
	}
	return err
}

func (l *Local) ServiceEnabled(ctx context.Context, name string) bool {
	return l.runner.Run(ctx, runner.Command{Path: "systemctl", Args: []string{"is-enabled", "--quiet", name}}).Success()
}

func (l *Local) EnableService(ctx context.Context, name string) error {
	res := l.runner.Run(ctx, runner.Command{Path: "systemctl", Args: []string{"enable", name}})
	if !res.Success() {
		return fmt.Errorf("enable %s: %s: %s", name, res.Status, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (l *Local) MountAll(ctx context.Context) error {
	res := l.runner.Run(ctx, runner.Command{Path: "mount", Args: []string{"-a"}})
	if !res.Success() {
		return fmt.Errorf("mount -a: %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}
	return nil
}
