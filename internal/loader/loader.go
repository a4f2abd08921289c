// Package loader reads policy and configuration files into document trees.
// It owns format detection and translates every parse failure into a single
// ErrMalformedInput so callers can abort before invoking the engine.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftcheck/driftcheck/internal/document"
)

// ErrMalformedInput wraps any parse failure; the document never reaches the
// engine in that case.
var ErrMalformedInput = errors.New("malformed input")

type format int

const (
	formatYAML format = iota
	formatJSON
)

// LoadFile reads and parses a YAML or JSON file.
func LoadFile(path string) (*document.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	node, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// Parse decodes raw bytes. The name (usually a file path) drives format
// detection by extension, with content sniffing as the fallback.
func Parse(data []byte, name string) (*document.Node, error) {
	switch detectFormat(name, data) {
	case formatJSON:
		node, err := document.FromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return node, nil
	default:
		node, err := document.FromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return node, nil
	}
}

func detectFormat(name string, data []byte) format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".json":
		return formatJSON
	}

	// sniff: JSON documents open with an object, array or quoted string
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{', '[', '"':
			return formatJSON
		}
	}
	return formatYAML
}
