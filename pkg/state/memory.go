package state

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Provider used in tests. All state lives in maps;
// failure modes are injected through the error fields.
type Memory struct {
	mu sync.Mutex

	Packages map[string]bool
	Files    map[string]string
	Dirs     map[string]bool
	Services map[string]bool

	InstallErr  error
	RefreshErr  error
	MountAllErr error

	InstallCalls [][]string
	EnableCalls  []string
	MountCalls   int
	RefreshCalls int
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		Packages: make(map[string]bool),
		Files:    make(map[string]string),
		Dirs:     make(map[string]bool),
		Services: make(map[string]bool),
	}
}

func (m *Memory) InstalledPackages(_ context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]bool, len(m.Packages))
	for k, v := range m.Packages {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (m *Memory) PackageInstalled(_ context.Context, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Packages[name]
}

func (m *Memory) InstallPackages(_ context.Context, pkgs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InstallCalls = append(m.InstallCalls, pkgs)
	if m.InstallErr != nil {
		return m.InstallErr
	}
	for _, p := range pkgs {
		m.Packages[p] = true
	}
	return nil
}

func (m *Memory) RefreshPackageDB(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshCalls++
	return m.RefreshErr
}

func (m *Memory) AuditPackages(ctx context.Context, pkgs []string) []string {
	var missing []string
	for _, p := range pkgs {
		if !m.PackageInstalled(ctx, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

func (m *Memory) ReadFile(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.Files[path]
	if !ok {
		return "", fmt.Errorf("read %s: file does not exist", path)
	}
	return content, nil
}

func (m *Memory) WriteFile(path string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[path] = content
	return nil
}

func (m *Memory) FileExist(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[path]
	return ok
}

func (m *Memory) EnsureDir(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirs[path] = true
	return nil
}

func (m *Memory) ServiceEnabled(_ context.Context, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Services[name]
}

func (m *Memory) EnableService(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnableCalls = append(m.EnableCalls, name)
	m.Services[name] = true
	return nil
}

func (m *Memory) MountAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MountCalls++
	return m.MountAllErr
}
