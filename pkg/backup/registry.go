package backup

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// FS is the file surface the registry works against. state.Provider
// satisfies it, which lets the whole backup discipline run against the
// in-memory provider in tests.
type FS interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
	EnsureDir(path string) error
}

// Entry is one file backed up during a run.
type Entry struct {
	Source    string
	Path      string
	Timestamp time.Time

	content string
}

// Registry takes at most one backup per source file per run and restores
// from it on demand. Every mutated file is registered here before its first
// edit; the final summary lists the entries.
type Registry struct {
	mu      sync.Mutex
	fs      FS
	dir     string
	records map[string]*Entry
	order   []string
}

// NewRegistry returns a registry writing copies into dir.
func NewRegistry(fs FS, dir string) *Registry {
	return &Registry{fs: fs, dir: dir, records: make(map[string]*Entry)}
}

// Ensure takes a backup of the source file unless one was already taken
// during this run.
func (r *Registry) Ensure(source string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.records[source]; ok {
		return e, nil
	}

	content, err := r.fs.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", source, err)
	}

	if err := r.fs.EnsureDir(r.dir); err != nil {
		return nil, err
	}

	now := time.Now()
	path := filepath.Join(r.dir, fmt.Sprintf("%s.%s.bak", filepath.Base(source), now.Format("20060102-150405")))
	if err := r.fs.WriteFile(path, content); err != nil {
		return nil, fmt.Errorf("backup %s: %w", source, err)
	}

	e := &Entry{Source: source, Path: path, Timestamp: now, content: content}
	r.records[source] = e
	r.order = append(r.order, source)
	return e, nil
}

// Restore puts the backed up content of the source file back in place.
func (r *Registry) Restore(source string) error {
	r.mu.Lock()
	e, ok := r.records[source]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no backup taken for %s", source)
	}
	return r.fs.WriteFile(source, e.content)
}

// All returns the entries in the order the backups were taken.
func (r *Registry) All() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*Entry, 0, len(r.order))
	for _, source := range r.order {
		entries = append(entries, r.records[source])
	}
	return entries
}
