package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants for staged sources.
const (
	FilePermission = 0644
)

// FileSystem defines the host-side file operations the staging step needs
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// stageSource writes the submitted code under fileName into a fresh temp
// directory and returns the directory path. The directory becomes the
// read-only bind mount for one request; the caller removes it afterwards.
func stageSource(fs FileSystem, fileName, code string) (string, error) {
	dir, err := fs.MkdirTemp("", "interpreter-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	if err := fs.WriteFile(filepath.Join(dir, fileName), []byte(code), FilePermission); err != nil {
		_ = fs.RemoveAll(dir)
		return "", fmt.Errorf("failed to write source file: %w", err)
	}

	return dir, nil
}
