package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitd/internal/constants"
)

// DefaultDBPath returns the configured default SQLite path
func DefaultDBPath() string {
	return constants.DefaultConfigPath
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
