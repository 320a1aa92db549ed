// Package security keeps generated output files inside the output
// directory the user chose.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

const maxFilenameLen = 128

// WithinDirectory returns an error if path, after cleaning and resolving
// symlinks on its nearest existing ancestor, lies outside dir.
func WithinDirectory(path, dir string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	canonicalDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(canonicalDir, canonicalize(absPath))
	if err != nil {
		return fmt.Errorf("path %s is outside %s: %w", path, dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %s escapes %s", path, dir)
	}
	return nil
}

// canonicalize resolves symlinks in the longest existing prefix of p.
func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for parent := filepath.Dir(p); ; parent = filepath.Dir(parent) {
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, _ := filepath.Rel(parent, p)
			return filepath.Join(resolved, rest)
		}
		if filepath.Dir(parent) == parent {
			return p
		}
	}
}

// SanitizeFilename maps s onto ASCII letters, digits, '.', '_' and '-',
// collapsing runs of anything else into one underscore.
func SanitizeFilename(s string) string {
	var b strings.Builder
	under := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
			under = false
		case !under:
			b.WriteByte('_')
			under = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

// OutputPath joins dir with a sanitized stem and suffix and checks that
// the result stays in dir.
func OutputPath(dir, stem, suffix string) (string, error) {
	p := filepath.Join(dir, SanitizeFilename(stem)+suffix)
	if err := WithinDirectory(p, dir); err != nil {
		return "", err
	}
	return p, nil
}
