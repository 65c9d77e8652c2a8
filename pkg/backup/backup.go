// Package backup takes timestamped copies of files before they are mutated
// in place and restores them verbatim when a post-condition check fails.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// Record points to a backup taken for a source file.
type Record struct {
	Source    string
	Path      string
	Timestamp time.Time
}

// Take copies src into dir and returns a record for it. The copy keeps the
// source's permission bits so a restore is byte- and mode-identical.
func Take(src, dir string) (*Record, error) {
	stat, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir %s: %w", dir, err)
	}

	now := time.Now()
	dst := filepath.Join(dir, fmt.Sprintf("%s.%s.bak", filepath.Base(src), now.Format("20060102-150405")))

	if err := copyFile(src, dst, stat.Mode()); err != nil {
		return nil, err
	}

	log.Debugf("backed up %s to %s", src, dst)
	return &Record{Source: src, Path: dst, Timestamp: now}, nil
}

// Restore puts the backed up content back to the source path.
func (r *Record) Restore() error {
	stat, err := os.Stat(r.Path)
	if err != nil {
		return fmt.Errorf("stat backup %s: %w", r.Path, err)
	}

	if err := copyFile(r.Path, r.Source, stat.Mode()); err != nil {
		return fmt.Errorf("restore %s: %w", r.Source, err)
	}

	log.Infof("restored %s from backup %s", r.Source, r.Path)
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return out.Close()
}
