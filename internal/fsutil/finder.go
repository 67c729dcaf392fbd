// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotExist is returned by CheckFile when the path does not exist.
	ErrNotExist = errors.New("file does not exist")
	// ErrNotRegular is returned by CheckFile when the path is a directory or
	// another non-regular file.
	ErrNotRegular = errors.New("not a regular file")
	// ErrExtension is returned by CheckFile when the extension is wrong.
	ErrExtension = errors.New("unexpected file extension")
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		return nil, errors.New("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CheckFile verifies that path exists, is a regular file and, when extension
// is non-empty, carries that extension (case-insensitive). The returned
// error wraps one of ErrNotExist, ErrNotRegular or ErrExtension.
func CheckFile(path, extension string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}
	if extension != "" && !strings.EqualFold(filepath.Ext(path), extension) {
		return fmt.Errorf("%w: %s (want %s)", ErrExtension, path, extension)
	}
	return nil
}
