// Package state abstracts the queries and mutations the configuration steps
// perform against the running system, so the whole sequence can be exercised
// against an in-memory fake.
package state

import "context"

// Provider is the capability surface the phases consult and mutate. The live
// implementation is Local; tests substitute Memory.
type Provider interface {
	// InstalledPackages returns a snapshot of installed package names.
	InstalledPackages(ctx context.Context) (map[string]bool, error)
	// PackageInstalled probes a single package.
	PackageInstalled(ctx context.Context, name string) bool
	// InstallPackages installs all given packages in one transaction.
	InstallPackages(ctx context.Context, pkgs []string) error
	// RefreshPackageDB forces a package database refresh.
	RefreshPackageDB(ctx context.Context) error
	// AuditPackages returns the subset of pkgs that are not installed.
	AuditPackages(ctx context.Context, pkgs []string) []string

	// ReadFile returns the contents of a file.
	ReadFile(path string) (string, error)
	// WriteFile replaces the contents of a file, preserving its mode.
	WriteFile(path string, content string) error
	// FileExist reports whether the path exists.
	FileExist(path string) bool
	// EnsureDir creates a directory (and parents) if absent.
	EnsureDir(path string) error

	// ServiceEnabled reports whether a unit is enabled.
	ServiceEnabled(ctx context.Context, name string) bool
	// EnableService enables a unit.
	EnableService(ctx context.Context, name string) error

	// MountAll mounts everything in the mount table, verifying its syntax.
	MountAll(ctx context.Context) error
}
