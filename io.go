// File: lixenwraith/settings/io.go
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// readFile returns the file contents, or found=false if the file does not exist.
func readFile(path string) (data []byte, found bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to stat settings file '%s': %w", ErrStorage, path, err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("%w: settings path '%s' is a directory", ErrStorage, path)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read settings file '%s': %w", ErrStorage, path, err)
	}
	return data, true, nil
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over path, so a crash mid-write leaves the previous file intact.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create settings directory '%s': %w", ErrStorage, dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary settings file in '%s': %w", ErrStorage, dir, err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: failed to write temp settings file '%s': %w", ErrStorage, tempPath, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("%w: failed to sync temp settings file '%s': %w", ErrStorage, tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp settings file '%s': %w", ErrStorage, tempPath, err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions on temp settings file '%s': %w", ErrStorage, tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("%w: failed to rename temp file '%s' to '%s': %w", ErrStorage, tempPath, path, err)
	}
	removed = true

	return nil
}
