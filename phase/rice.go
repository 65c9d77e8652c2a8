package phase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/archprep/archprep/cache"
	"github.com/archprep/archprep/config"
	"github.com/archprep/archprep/pkg/retry"
	"github.com/archprep/archprep/pkg/runner"
	log "github.com/sirupsen/logrus"
)

const riceMenuDone = "done"

// InstallRices offers the fixed add-on menu and runs the chosen third-party
// installers. Each installer is fetched over the network immediately before
// execution; individual failures are collected and reported soft.
type InstallRices struct {
	GenericPhase
}

// Title for the phase
func (p *InstallRices) Title() string {
	return "Install Rice Add-Ons"
}

// ShouldRun asks the gating question for the whole group. A dry run never
// prompts.
func (p *InstallRices) ShouldRun() bool {
	if len(p.Session.Config.Rices) == 0 {
		return false
	}
	if p.Session.DryRun {
		return true
	}
	ok, err := p.Session.Prompt.Confirm("Install a third-party rice (desktop appearance bundle)?", false)
	if err != nil {
		log.Warnf("prompt failed, skipping rice add-ons: %s", err)
		return false
	}
	return ok
}

// Run the phase
func (p *InstallRices) Run(ctx context.Context) error {
	result := &Error{}

	options := make([]string, 0, len(p.Session.Config.Rices)+1)
	for _, r := range p.Session.Config.Rices {
		options = append(options, r.Name)
	}
	options = append(options, riceMenuDone)

	for {
		choice, err := p.Session.Prompt.Select("Choose a rice to install", options)
		if err != nil {
			result.AddError(err)
			break
		}
		if choice == riceMenuDone {
			break
		}

		if err := p.install(ctx, p.rice(choice)); err != nil {
			log.Warnf("rice %s failed: %s", choice, err)
			result.AddError(fmt.Errorf("%s: %w", choice, err))
		}
	}

	if result.Count() > 0 {
		return result
	}
	return nil
}

func (p *InstallRices) rice(name string) config.Rice {
	for _, r := range p.Session.Config.Rices {
		if r.Name == name {
			return r
		}
	}
	return config.Rice{}
}

func (p *InstallRices) install(ctx context.Context, rice config.Rice) error {
	if rice.URL == "" {
		return fmt.Errorf("no installer URL")
	}

	script, err := p.fetch(ctx, rice)
	if err != nil {
		return fmt.Errorf("fetch installer: %w", err)
	}

	cmd := runner.Command{Path: script}
	for key, value := range rice.Options {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%v=%v", key, value))
	}
	if user, home := targetUser(); user != "" {
		cmd.Dir = home
		cmd = runAs(user, cmd)
	}

	log.Infof("running installer for %s", rice.Name)
	res := p.Session.Runner.Run(ctx, cmd)
	if !res.Success() {
		return fmt.Errorf("installer %s: %s", res.Status, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// fetch downloads the installer script to the cache dir right before it
// runs, so the menu never executes a stale copy.
func (p *InstallRices) fetch(ctx context.Context, rice config.Rice) (string, error) {
	dir := cache.File("rices")
	if err := cache.EnsureDir(dir); err != nil {
		return "", err
	}

	name := strings.ReplaceAll(rice.Name, "/", "-") + ".sh"
	path := cache.File("rices", name)

	err := retry.Times(ctx, 3, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rice.URL, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", retry.ErrAbort, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected response: %s", resp.Status)
		}

		out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			return fmt.Errorf("%w: %w", retry.ErrAbort, err)
		}
		if _, err := io.Copy(out, resp.Body); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	})
	if err != nil {
		return "", err
	}

	return path, nil
}
