package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Errors reported by ResolveExecutable.
var (
	ErrNotExecutable = errors.New("not executable")
	ErrIsDirectory   = errors.New("path is a directory")
)

// ResolveExecutable returns the path that running name would execute. A
// name containing a path separator is checked directly; anything else is
// looked up in PATH.
func ResolveExecutable(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty command")
	}

	path := name
	if !strings.ContainsRune(name, filepath.Separator) && !strings.ContainsRune(name, '/') {
		resolved, err := exec.LookPath(name)
		if err != nil {
			return "", err
		}
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return path, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	if !IsExecutable(path, info) {
		return path, fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return path, nil
}

// IsExecutable reports whether the file at path may be run: an execute bit
// on Unix, a PATHEXT extension on Windows.
func IsExecutable(path string, info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return IsWindowsExecutable(path)
	}
	return info.Mode().Perm()&0o111 != 0
}

// WindowsExecutableExtensions returns the lowercase executable extensions
// (with leading dot) listed in PATHEXT, or a default set if it is unset.
func WindowsExecutableExtensions() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range SplitAndTrim(pathext, ";") {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}

// IsWindowsExecutable returns true if path has an extension from PATHEXT.
func IsWindowsExecutable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return WindowsExecutableExtensions()[ext]
}
