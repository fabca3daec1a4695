// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// WalkFilesByExtension recursively walks rootPath in lexical order and calls
// fn for every regular file whose name ends with extension. A non-nil error
// from fn stops the walk and is returned unchanged.
func WalkFilesByExtension(rootPath string, extension string, fn func(path string) error) error {
	if extension == "" {
		panic("extension must not be empty")
	}

	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			return fn(path)
		}
		return nil
	})
}

// FindDirs returns rootPath and every directory below it.
func FindDirs(rootPath string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
