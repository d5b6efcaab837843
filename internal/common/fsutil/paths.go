package fsutil

import (
	"path/filepath"
	"strings"
)

// ToAbsPath converts a path to an absolute, cleaned path
func ToAbsPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// CanonicalPath resolves a path to an absolute path with symlinks evaluated.
// Paths that do not exist yet fall back to their absolute form.
func CanonicalPath(path string) (string, error) {
	abs, err := ToAbsPath(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	// A missing file still resolves through its parent directory
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return abs, nil
}

// GetExtension returns the lower-cased extension of a path, including the dot
func GetExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// GetFileNameWithoutExt returns the base name of a path without its extension
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
