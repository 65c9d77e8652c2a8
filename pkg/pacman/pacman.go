// Package pacman plans and performs package installations. Installs always
// pass the full delta to a single pacman invocation; a post-install audit
// re-queries each package to catch partial failures hidden behind a zero
// exit code.
package pacman

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/archprep/archprep/pkg/runner"
	"github.com/gammazero/workerpool"
	log "github.com/sirupsen/logrus"
)

// auditWorkers bounds the concurrent per-package queries during an audit.
const auditWorkers = 4

// Set is a named, ordered collection of package names.
type Set struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages"`
}

// Validate checks the set for emptiness and duplicate entries.
func (s Set) Validate() error {
	if len(s.Packages) == 0 {
		return fmt.Errorf("package set %q is empty", s.Name)
	}
	seen := make(map[string]bool, len(s.Packages))
	for _, p := range s.Packages {
		if seen[p] {
			return fmt.Errorf("package set %q lists %q twice", s.Name, p)
		}
		seen[p] = true
	}
	return nil
}

// Plan returns the subset of the requested set not yet installed, preserving
// the set's original order.
func Plan(requested Set, installed map[string]bool) []string {
	var delta []string
	for _, p := range requested.Packages {
		if !installed[p] {
			delta = append(delta, p)
		}
	}
	return delta
}

// Client drives the pacman binary.
type Client struct {
	runner runner.Runner
}

// NewClient returns a pacman client using the given runner.
func NewClient(r runner.Runner) *Client {
	return &Client{runner: r}
}

// Installed returns the names of all currently installed packages.
func (c *Client) Installed(ctx context.Context) (map[string]bool, error) {
	res := c.runner.Run(ctx, runner.Command{Path: "pacman", Args: []string{"-Qq"}})
	if !res.Success() {
		return nil, fmt.Errorf("query installed packages: %s: %w", res.Status, res.Err)
	}
	installed := make(map[string]bool)
	for _, name := range strings.Fields(res.Stdout) {
		installed[name] = true
	}
	return installed, nil
}

// IsInstalled probes a single package.
func (c *Client) IsInstalled(ctx context.Context, name string) bool {
	return c.runner.Run(ctx, runner.Command{Path: "pacman", Args: []string{"-Qq", name}}).Success()
}

// Install installs all given packages in one pacman transaction.
func (c *Client) Install(ctx context.Context, pkgs []string) error {
	if len(pkgs) == 0 {
		return nil
	}
	args := append([]string{"-S", "--noconfirm", "--needed"}, pkgs...)
	res := c.runner.Run(ctx, runner.Command{Path: "pacman", Args: args})
	if !res.Success() {
		return fmt.Errorf("pacman install: %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// Refresh forces a package database refresh.
func (c *Client) Refresh(ctx context.Context) error {
	res := c.runner.Run(ctx, runner.Command{Path: "pacman", Args: []string{"-Syy"}})
	if !res.Success() {
		return fmt.Errorf("pacman database refresh: %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// Audit re-queries the install state of each package and returns the ones
// still missing. This protects against partial multi-package install failures
// that report an overall success exit code.
func (c *Client) Audit(ctx context.Context, pkgs []string) []string {
	var mu sync.Mutex
	var missing []string

	wp := workerpool.New(auditWorkers)
	for _, pkg := range pkgs {
		pkg := pkg
		wp.Submit(func() {
			if !c.IsInstalled(ctx, pkg) {
				log.Warnf("package %s still missing after install", pkg)
				mu.Lock()
				missing = append(missing, pkg)
				mu.Unlock()
			}
		})
	}
	wp.StopWait()

	return missing
}
