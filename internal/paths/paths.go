// Package paths centralizes file and directory names used across sigdemo.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	ConfigFile = "config.toml"
	LogFile    = "sigdemo.log"
)

const (
	BinaryName = "sigdemo"
	DataDirRel = ".sigdemo" // relative to $HOME
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// DefaultRoot returns ~/.sigdemo, or ./.sigdemo when the home directory
// cannot be determined.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DataDirRel)
	}
	return filepath.Join(home, DataDirRel)
}

// Expand resolves a leading "~" in p against the user's home directory and
// returns a cleaned path. An empty p yields [DefaultRoot].
func Expand(p string) string {
	if p == "" {
		return DefaultRoot()
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Clean(p)
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return filepath.Clean(p)
}
