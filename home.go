package fusion

import (
	"os"
	"path/filepath"
)

// Home returns the Fusion home directory.
// It defaults to ~/.fusion but can be overridden with the FUSION_HOME environment variable.
func Home() string {
	if v := os.Getenv("FUSION_HOME"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".fusion")
}

// DefaultMemoryPath returns the default memory document path (~/.fusion/memory.json).
func DefaultMemoryPath() string {
	return filepath.Join(Home(), "memory.json")
}

// DefaultDBPath returns the default SQLite database path (~/.fusion/fusion.db).
func DefaultDBPath() string {
	return filepath.Join(Home(), "fusion.db")
}

// TrailDir returns the default directory for reasoning trails and debug logs.
func TrailDir() string {
	return filepath.Join(Home(), "trails")
}

// EnsureHome creates the Fusion home and trail directories if they don't exist.
func EnsureHome() error {
	return os.MkdirAll(TrailDir(), 0o755)
}
