package phase

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/archprep/archprep/pkg/retry"
	log "github.com/sirupsen/logrus"
)

// networkProbeURL is queried to confirm the network is reachable before
// anything mutates.
var networkProbeURL = "https://archlinux.org"

// Preflight validates the hard preconditions: correct privilege level, a
// working elevation tool and network reachability. Nothing has mutated yet
// when it runs, so any failure aborts the whole sequence.
type Preflight struct {
	GenericPhase
}

// Title for the phase
func (p *Preflight) Title() string {
	return "Validate preconditions"
}

// Critical marks precondition failures as hard
func (p *Preflight) Critical() bool {
	return true
}

// Run the phase
func (p *Preflight) Run(ctx context.Context) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("must be run as root (use sudo)")
	}

	if os.Getenv("SUDO_USER") == "" {
		log.Warnf("SUDO_USER is not set, user-level steps will run as root")
	}

	if _, err := exec.LookPath("sudo"); err != nil {
		return fmt.Errorf("sudo not found in PATH: %w", err)
	}

	if err := p.checkConnection(ctx); err != nil {
		return fmt.Errorf("no network connectivity: %w", err)
	}

	return nil
}

func (p *Preflight) checkConnection(ctx context.Context) error {
	return retry.Timeout(ctx, 30*time.Second, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, networkProbeURL, nil)
		if err != nil {
			return err
		}
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		log.Debugf("network probe %s: %s", networkProbeURL, resp.Status)
		return nil
	})
}
