package tools

import (
	"os"
	"path/filepath"
	"strings"
)

// Locations are the well-known user directories path shortcuts expand into.
type Locations struct {
	Desktop   string
	Documents string
	Downloads string
}

// DefaultLocations derives the standard folders from the home directory.
// Overrides come from config for setups where these live elsewhere.
func DefaultLocations() Locations {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Locations{
		Desktop:   filepath.Join(home, "Desktop"),
		Documents: filepath.Join(home, "Documents"),
		Downloads: filepath.Join(home, "Downloads"),
	}
}

// ResolvePath expands the "desktop/...", "documents/..." and "downloads/..."
// shortcuts the intent rules emit, plus a leading "~".
func (l Locations) ResolvePath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case lower == "desktop":
		return l.Desktop
	case lower == "documents":
		return l.Documents
	case lower == "downloads":
		return l.Downloads
	case strings.HasPrefix(lower, "desktop/"):
		return filepath.Join(l.Desktop, path[len("desktop/"):])
	case strings.HasPrefix(lower, "documents/"):
		return filepath.Join(l.Documents, path[len("documents/"):])
	case strings.HasPrefix(lower, "downloads/"):
		return filepath.Join(l.Downloads, path[len("downloads/"):])
	case strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
