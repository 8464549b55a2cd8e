// Package project locates the Go module spygen runs in, so settings kept at the
// module root apply from any package below it.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ModFile marks a module root.
const ModFile = "go.mod"

// ErrRootNotFound is returned when no directory up to the file system root holds a go.mod.
var ErrRootNotFound = errors.New("could not find project root (go.mod)")

// FileSystem is what root lookup needs from the disk.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Getwd() (string, error)
}

// OS is the real file system.
type OS struct{}

// Getwd returns the working directory.
func (OS) Getwd() (string, error) {
	return os.Getwd() //nolint:wrapcheck // thin adapter
}

// Stat describes path.
func (OS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path) //nolint:wrapcheck // thin adapter
}

// FindRoot locates the nearest directory at or above start that contains a go.mod.
// An empty start means the working directory.
func FindRoot(cfs FileSystem, start string) (string, error) {
	curr := start
	if curr == "" {
		wd, err := cfs.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}

		curr = wd
	}

	curr = filepath.Clean(curr)

	for {
		_, err := cfs.Stat(filepath.Join(curr, ModFile))
		if err == nil {
			return curr, nil
		}

		parent := filepath.Dir(curr)
		if parent == curr {
			return "", fmt.Errorf("%w: from %s", ErrRootNotFound, start)
		}

		curr = parent
	}
}
