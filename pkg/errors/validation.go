package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// classNameRegex matches constant paths such as "Post" or "Admin::User".
var classNameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*(::[A-Z][A-Za-z0-9_]*)*$`)

// ValidateClassName validates a class name taken from a catalog.
//
// Names are rendered as quoted DOT identifiers and joined into source paths,
// so the rules are conservative:
//   - No empty names
//   - Maximum length of 256 characters
//   - Namespaced constant syntax only (Foo, Foo::Bar)
func ValidateClassName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidCatalog, "class name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidCatalog, "class name too long (max 256 characters)")
	}

	if !classNameRegex.MatchString(name) {
		return New(ErrCodeInvalidCatalog, "invalid class name: %q", name)
	}

	return nil
}

// ValidatePath validates a relative file path used for source links.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateLinkBase validates the base used for clickable source links.
// Both URLs and local path prefixes are accepted; only URL schemes that
// Graphviz renders as hyperlinks are allowed.
func ValidateLinkBase(base string) error {
	if base == "" {
		return New(ErrCodeInvalidInput, "link base cannot be empty")
	}

	if i := strings.Index(base, "://"); i > 0 {
		switch base[:i] {
		case "http", "https", "file":
		default:
			return New(ErrCodeInvalidInput, "link base must use http, https or file scheme")
		}
	}

	for _, r := range base {
		if unicode.IsControl(r) || r == '"' {
			return New(ErrCodeInvalidInput, "link base contains invalid characters")
		}
	}

	return nil
}
