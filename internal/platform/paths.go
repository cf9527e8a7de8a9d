package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	// Convert to platform-specific separators
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// ValidateDirectory checks that path names an existing, accessible
// directory and returns its canonical form: ~ expanded, absolute, cleaned
// and with symlinks resolved.
func ValidateDirectory(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}

	abs, err := filepath.Abs(NormalizePath(expanded))
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &PathError{Path: path, Message: "does not exist"}
		}
		return "", &PathError{Path: path, Message: err.Error()}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}
	if !info.IsDir() {
		return "", &PathError{Path: path, Message: "not a directory"}
	}

	// A directory we cannot list is useless as a backup root
	dir, err := os.Open(resolved)
	if err != nil {
		return "", &PathError{Path: path, Message: "not accessible"}
	}
	dir.Close()

	return resolved, nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
