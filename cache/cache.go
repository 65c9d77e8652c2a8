// Package cache locates the writable state directory used for the session
// log, configuration backups and downloaded add-on installers.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/sys/unix"
)

// Dir returns the directory where archprep state is stored. Runs as root
// use the system cache; anything else falls back to the user's XDG cache.
func Dir() string {
	if os.Geteuid() == 0 {
		return "/var/cache/archprep"
	}
	return filepath.Join(xdg.CacheHome, "archprep")
}

// BackupDir returns the directory where file backups are written.
func BackupDir() string {
	return filepath.Join(Dir(), "backups")
}

// EnsureDir makes a directory if it doesn't exist
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)

	if err == nil || os.IsExist(err) {
		if unix.Access(dir, unix.W_OK) != nil {
			return fmt.Errorf("not writable: %s", dir)
		}
		return nil
	}

	return err
}

// File returns a path to a file in the cache dir
func File(parts ...string) string {
	parts = append([]string{Dir()}, parts...)
	return filepath.Join(parts...)
}
