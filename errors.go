package epubtext

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the epubtext package.
var (
	// ErrInvalidNewlineMode indicates a newline mode other than single,
	// double or none.
	ErrInvalidNewlineMode = errors.New("epubtext: invalid newline mode")

	// ErrInvalidTitleMode indicates a title mode other than tag, toc or auto.
	ErrInvalidTitleMode = errors.New("epubtext: invalid title mode")
)

// PackageError reports a package that cannot be turned into chapters at
// all: an unreadable archive, a spine entry without a manifest item, or a
// document that cannot be read. It is always fatal; no partial chapter list
// accompanies it.
type PackageError struct {
	Op   string // "open", "spine", "read", "parse"
	Path string // archive or document path, may be empty
	Err  error
}

func (e *PackageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("epubtext: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("epubtext: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PackageError) Unwrap() error { return e.Err }

// ConfigError reports an unusable configuration value. Extraction fails
// with it before any document is read.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("epubtext: config %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
