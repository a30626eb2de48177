package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the name of the project state directory.
const Dir = ".bioscope"

// ConfigPath returns the path of the configuration document for a
// project root.
func ConfigPath(root string) string {
	return filepath.Join(root, Dir, "config", "bioscope.yaml")
}

// CacheDBPath returns the path of the policy cache database for a
// project root.
func CacheDBPath(root string) string {
	return filepath.Join(root, Dir, "cache", "validation.db")
}

// HistoryDBPath returns the path of the check-history database for a
// project root.
func HistoryDBPath(root string) string {
	return filepath.Join(root, Dir, "history", "checks.db")
}

// DatasetsDir returns the directory holding tracked metadata records.
func DatasetsDir(root string) string {
	return filepath.Join(root, Dir, "datasets")
}

// FindRoot walks up from start looking for a directory containing the
// project state directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, Dir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not inside a bioscope project (no %s directory found above %s)", Dir, start)
		}
		dir = parent
	}
}
