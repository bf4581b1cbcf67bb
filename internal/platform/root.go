package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// StoreDirName is the store directory of a project-local catalog.
const StoreDirName = ".lintas"

// ErrRootNotFound is returned by FindRoot when no ancestor holds a StoreDirName.
var ErrRootNotFound = errors.New("no .lintas store found")

// FindRoot walks upwards from startDir looking for a StoreDirName directory
// and returns the directory containing it.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, StoreDirName)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

// ProjectStorePath returns the nearest project-local store at or above startDir.
func ProjectStorePath(startDir string) (string, bool) {
	root, err := FindRoot(startDir)
	if err != nil {
		return "", false
	}
	return filepath.Join(root, StoreDirName), true
}

// defaultPath picks the store used when none is configured: a project-local
// store above the working directory, else the per-user XDG location.
func defaultPath(name string) string {
	if wd, err := os.Getwd(); err == nil {
		if path, ok := ProjectStorePath(wd); ok {
			return path
		}
	}
	return DefaultStorePath(name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
