package core

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath cleans a project-relative path: forward slashes, no leading "./".
func NormalizePath(p string) string {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "./")
	if clean == "." {
		return ""
	}
	return clean
}

// JoinPath joins a project-relative directory and an entry name.
// The project root is the empty string.
func JoinPath(dir, name string) string {
	if dir == "" {
		return NormalizePath(name)
	}
	return NormalizePath(dir + "/" + name)
}

// DirOf returns the project-relative directory containing p ("" for the root).
func DirOf(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// BaseOf returns the last element of p.
func BaseOf(p string) string {
	return path.Base(p)
}

// ValidateCanonical reports whether p is usable as a canonical path.
// name is used in the error (e.g. "old path").
func ValidateCanonical(p, name string) error {
	switch {
	case strings.TrimSpace(p) == "":
		return &ArgumentError{Name: name, Reason: "empty path"}
	case filepath.IsAbs(p) || strings.HasPrefix(p, "/"):
		return &ArgumentError{Name: name, Reason: "absolute path: " + p}
	case strings.Contains(p, "://") || strings.HasPrefix(strings.ToLower(p), "mailto:"):
		return &ArgumentError{Name: name, Reason: "scheme prefix: " + p}
	}
	n := NormalizePath(p)
	if n == "" || n == ".." || strings.HasPrefix(n, "../") {
		return &ArgumentError{Name: name, Reason: "escapes project: " + p}
	}
	return nil
}

// isHidden reports whether a path element is a dot-file or dot-directory.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// hasExtension reports whether name ends with one of exts (case-insensitive).
func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
