// Package source reads configuration files into treeskema values.
//
// YAML and JSON are supported. Mapping key order is preserved, duplicate keys
// are rejected, and nesting can be bounded with Loader.MaxDepth.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	ts "github.com/reoring/treeskema"
)

var (
	// ErrEmptyPath is returned by Load when no path is given.
	ErrEmptyPath = errors.New("Path for config file is not provided")
	// ErrPathIsDirectory is returned by Load when path names a directory.
	ErrPathIsDirectory = errors.New("path is a directory")
)

// Format names an input encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the decoder for a file name. Only ".json" selects JSON;
// JSON is valid YAML, so everything else is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseError reports a file whose contents could not be decoded.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse '%s' file as %s. Got following error: %s", e.Path, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DefaultMaxDepth is the nesting bound set by NewLoader.
const DefaultMaxDepth = 64

// Loader reads configuration files from FS.
type Loader struct {
	FS afero.Fs
	// MaxDepth bounds the nesting of sequences and mappings. Zero means
	// unlimited.
	MaxDepth int
}

// NewLoader returns a Loader over fs bounded by DefaultMaxDepth. A nil fs
// reads the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{FS: fs, MaxDepth: DefaultMaxDepth}
}

// Load reads and decodes the file at path.
func (l *Loader) Load(path string) (ts.Value, error) {
	if strings.TrimSpace(path) == "" {
		return ts.Value{}, ErrEmptyPath
	}
	fs := l.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir, err := afero.IsDir(fs, path)
	if err != nil {
		return ts.Value{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if dir {
		return ts.Value{}, fmt.Errorf("%s: %w", path, ErrPathIsDirectory)
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return ts.Value{}, fmt.Errorf("read %s: %w", path, err)
	}
	format := FormatOf(path)
	v, err := l.decode(format, b)
	if err != nil {
		return ts.Value{}, &ParseError{Path: path, Format: format, Err: err}
	}
	return v, nil
}

// Bytes decodes b in the given format with the loader's limits.
func (l *Loader) Bytes(format Format, b []byte) (ts.Value, error) {
	return l.decode(format, b)
}

func (l *Loader) decode(format Format, b []byte) (ts.Value, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(b, l.MaxDepth)
	case FormatYAML:
		return decodeYAML(b, l.MaxDepth)
	default:
		return ts.Value{}, fmt.Errorf("unsupported format %q", format)
	}
}

// YAMLBytes decodes a single YAML document.
func YAMLBytes(b []byte) (ts.Value, error) { return decodeYAML(b, 0) }

// JSONBytes decodes a single JSON document.
func JSONBytes(b []byte) (ts.Value, error) { return decodeJSON(b, 0) }

func depthIssue(at ts.Path, max int) ts.Issue {
	return ts.Issue{Path: at, Code: ts.CodeParseError, Message: fmt.Sprintf("max depth %d exceeded", max)}
}

func duplicateIssue(at ts.Path, key string) ts.Issue {
	return ts.Issue{Path: at, Code: ts.CodeDuplicateKey, Message: fmt.Sprintf("duplicate key %q", key)}
}
