package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Paths contains commonly used file paths.
type Paths struct {
	Database  string // Main SQLite database
	Badger    string // Badger store directory
	StateFile string // JSON file store
	Config    string // Config file
	Env       string // Optional .env file
	Logs      string // Log directory
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database:  filepath.Join(cfg.BaseDir, "vidtally.db"),
		Badger:    filepath.Join(cfg.BaseDir, "badger"),
		StateFile: filepath.Join(cfg.BaseDir, "state.json"),
		Config:    filepath.Join(cfg.BaseDir, "config.yaml"),
		Env:       filepath.Join(cfg.BaseDir, ".env"),
		Logs:      filepath.Join(cfg.BaseDir, "logs"),
	}
}

// DefaultBaseDir returns the default base directory ($XDG_DATA_HOME/vidtally).
func DefaultBaseDir() string {
	return filepath.Join(xdg.DataHome, "vidtally")
}
