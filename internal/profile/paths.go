// Package profile resolves per-profile paths under ~/.hearth. A profile
// is one independent corpus plus its daemon; most installs only ever
// use "main".
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.hearth.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hearth")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the daemon lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// CorpusDBPath returns the corpus database path for a profile.
func CorpusDBPath(name string) string {
	return filepath.Join(Dir(name), "corpus.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "hearthd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
