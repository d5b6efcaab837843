// Package parser reads workflow documents of either schema into the shared
// graph model.
package parser

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// TextName is the document name given to content parsed from memory
const TextName = "memory"

// Parser reads one schema
type Parser interface {
	// Schema returns the schema this parser reads
	Schema() workflow.Schema
	// Extensions returns the recognised file extensions, lower case with a leading dot
	Extensions() []string
	// Parse reads a document from disk, consulting the cache first
	Parse(path string) (*workflow.Document, error)
	// ParseText reads a document from raw content. The cache is not used.
	ParseText(content string) (*workflow.Document, error)
	// ClearCache empties the parser's cache
	ClearCache()
}

// decodeFunc builds a document from a parsed element tree
type decodeFunc func(root *xmlutil.Element, name string) *workflow.Document

// DocumentName derives a document name from a path by dropping any
// compression suffix and the file extension.
func DocumentName(path string) string {
	base, _ := compression.SplitPath(path)
	return fsutil.GetFileNameWithoutExt(filepath.Base(base))
}

// HasExtension reports whether path ends in one of exts once any compression
// suffix is removed.
func HasExtension(path string, exts []string) bool {
	base, _ := compression.SplitPath(path)
	return slices.Contains(exts, fsutil.GetExtension(base))
}

// load implements the shared path entry point: cache lookup, existence and
// extension checks, transparent decompression, decoding and cache population.
func load(path string, schema workflow.Schema, exts []string, cache *Cache, decode decodeFunc) (*workflow.Document, error) {
	key, err := fsutil.CanonicalPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrPathNotAccessible, path)
	}

	if doc, ok := cache.Get(key, schema); ok {
		logger.LogDebug("Using cached document", map[string]interface{}{
			"path":   path,
			"schema": string(schema),
		})
		return doc, nil
	}

	if !fsutil.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileNotFound, path)
	}

	if !HasExtension(path, exts) {
		base, _ := compression.SplitPath(path)
		return nil, fmt.Errorf("%w: %q is not one of %s", errors.ErrUnsupportedFormat,
			filepath.Ext(base), strings.Join(exts, ", "))
	}

	data, err := compression.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFileReadError, err)
	}

	root, err := xmlutil.Parse(data)
	if err != nil {
		logger.LogError("Failed to parse document", err, map[string]interface{}{"path": path})
		return nil, err
	}

	doc := decode(root, DocumentName(path))
	doc.Path = path

	cache.Put(key, doc)

	logger.LogInfo("Parsed document", map[string]interface{}{
		"path":   path,
		"schema": string(schema),
		"nodes":  doc.Graph.NodeCount(),
		"edges":  doc.Graph.EdgeCount(),
	})
	return doc, nil
}

// loadText implements the shared text entry point
func loadText(content string, decode decodeFunc) (*workflow.Document, error) {
	root, err := xmlutil.Parse([]byte(content))
	if err != nil {
		return nil, err
	}
	return decode(root, TextName), nil
}

// firstOf returns the direct child with the given name, falling back to the
// first descendant of that name.
func firstOf(el *xmlutil.Element, name string) *xmlutil.Element {
	if c := el.Child(name); c != nil {
		return c
	}
	for _, d := range el.Iter(name) {
		if d != el {
			return d
		}
	}
	return nil
}

// configChildren copies every child of el that carries text into cfg
func configChildren(el *xmlutil.Element, cfg *workflow.Config) {
	if el == nil {
		return
	}
	for _, c := range el.Children {
		if c.Text != "" {
			cfg.Set(c.Name, c.Text)
		}
	}
}
