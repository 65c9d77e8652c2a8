package phase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/archprep/archprep/analytics"
	"github.com/archprep/archprep/cache"
	"github.com/archprep/archprep/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// KeepAlive fences concurrent runs with a lock file and keeps the elevated
// privilege session fresh with a periodic no-op refresh while the rest of
// the sequence runs. The ticker is cancelled unconditionally through CleanUp
// when the sequence ends, however it ends.
type KeepAlive struct {
	GenericPhase

	// Interval between privilege refreshes.
	Interval time.Duration

	instanceID string
	lockPath   string
	cancel     context.CancelFunc
	mu         sync.Mutex
	wg         sync.WaitGroup
}

// Prepare the phase
func (p *KeepAlive) Prepare(s *Session) error {
	p.Session = s
	if p.Interval == 0 {
		p.Interval = time.Minute
	}
	id, err := analytics.MachineID()
	if err != nil {
		hn, herr := os.Hostname()
		if herr != nil {
			hn = "unknown"
		}
		id = hn
	}
	p.instanceID = fmt.Sprintf("%s-%d", id, os.Getpid())
	p.lockPath = cache.File("archprep.lock")
	return nil
}

// Title for the phase
func (p *KeepAlive) Title() string {
	return "Acquire run lock and keep privileges fresh"
}

// Critical - a held lock means another instance is mid-run
func (p *KeepAlive) Critical() bool {
	return true
}

// Run the phase
func (p *KeepAlive) Run(ctx context.Context) error {
	if err := p.tryLock(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		log.Tracef("started periodic privilege refresh every %s", p.Interval)
		for {
			select {
			case <-ticker.C:
				res := p.Session.Runner.Run(ctx, runner.Command{Path: "sudo", Args: []string{"-n", "-v"}})
				if !res.Success() {
					log.Debugf("privilege refresh failed: %s", res.Status)
				}
				now := time.Now()
				if err := os.Chtimes(p.lockPath, now, now); err != nil {
					log.Debugf("failed to touch lock file: %s", err)
				}
			case <-ctx.Done():
				log.Tracef("stopped privilege refresh, removing lock file")
				if err := os.Remove(p.lockPath); err != nil && !os.IsNotExist(err) {
					log.Debugf("failed to remove lock file %s: %s", p.lockPath, err)
				}
				return
			}
		}
	}()

	return nil
}

// CleanUp cancels the refresh ticker and releases the lock
func (p *KeepAlive) CleanUp() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		p.wg.Wait()
	}
}

func (p *KeepAlive) tryLock() error {
	if err := cache.EnsureDir(cache.Dir()); err != nil {
		return err
	}

	if content, err := os.ReadFile(p.lockPath); err == nil {
		stat, serr := os.Stat(p.lockPath)
		if serr == nil && time.Since(stat.ModTime()) < 2*p.Interval {
			return fmt.Errorf("another instance appears to be running (%s), delete %s or wait for it to expire", string(content), p.lockPath)
		}
		log.Debugf("removing expired lock file %s", p.lockPath)
		_ = os.Remove(p.lockPath)
	}

	return os.WriteFile(p.lockPath, []byte(p.instanceID), 0o600)
}
