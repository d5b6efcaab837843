// Package formats binds each workflow schema to its parser, serializer and
// validation ruleset, and resolves file paths to a schema by extension.
package formats

import (
	"fmt"
	"sort"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/converter"
	"github.com/deploymenttheory/go-etl-bridge/internal/parser"
	"github.com/deploymenttheory/go-etl-bridge/internal/serializer"
	"github.com/deploymenttheory/go-etl-bridge/internal/validation"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// Format groups everything needed to read, write and check one schema
type Format struct {
	Schema     workflow.Schema
	Parser     parser.Parser
	Serializer serializer.Serializer
	Rules      []validation.Rule
}

// Registry holds the known formats. All parsers share one cache.
type Registry struct {
	cache   *parser.Cache
	formats map[workflow.Schema]*Format
}

// NewRegistry creates a registry with both built in schemas. A nil cache
// gets a fresh one.
func NewRegistry(cache *parser.Cache) *Registry {
	if cache == nil {
		cache = parser.NewCache()
	}
	r := &Registry{cache: cache, formats: map[workflow.Schema]*Format{}}
	r.Register(&Format{
		Schema:     workflow.SchemaAlteryx,
		Parser:     parser.NewAlteryxParser(cache),
		Serializer: serializer.NewAlteryxSerializer(),
		Rules:      validation.AlteryxRules(),
	})
	r.Register(&Format{
		Schema:     workflow.SchemaOdi,
		Parser:     parser.NewOdiParser(cache),
		Serializer: serializer.NewOdiSerializer(),
		Rules:      validation.OdiRules(),
	})
	return r
}

// Register adds or replaces the format for f.Schema
func (r *Registry) Register(f *Format) {
	r.formats[f.Schema] = f
}

// Cache returns the shared parse cache
func (r *Registry) Cache() *parser.Cache {
	return r.cache
}

// Schemas returns the registered schemas in name order
func (r *Registry) Schemas() []workflow.Schema {
	out := make([]workflow.Schema, 0, len(r.formats))
	for s := range r.formats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForSchema returns the format registered for s
func (r *Registry) ForSchema(s workflow.Schema) (*Format, error) {
	f, ok := r.formats[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSchema, s)
	}
	return f, nil
}

// ForPath picks a format by file extension, ignoring a compression suffix
func (r *Registry) ForPath(path string) (*Format, error) {
	for _, s := range r.Schemas() {
		f := r.formats[s]
		if parser.HasExtension(path, f.Parser.Extensions()) {
			return f, nil
		}
	}
	base, _ := compression.SplitPath(path)
	return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, fsutil.GetExtension(base))
}

// Parse reads path with the parser its extension selects
func (r *Registry) Parse(path string) (*workflow.Document, error) {
	f, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return f.Parser.Parse(path)
}

// Validator creates a validator for schema s. Extra rules run after the
// registered ones.
func (r *Registry) Validator(s workflow.Schema, extra ...validation.Rule) (*validation.Validator, error) {
	f, err := r.ForSchema(s)
	if err != nil {
		return nil, err
	}
	return validation.New(f.Parser, f.Rules, extra...), nil
}

// Converter creates a converter whose parser and serializer come from the
// registry
func (r *Registry) Converter(direction converter.Direction, opts ...converter.Option) (*converter.Converter, error) {
	src, err := r.ForSchema(direction.Source())
	if err != nil {
		return nil, err
	}
	dst, err := r.ForSchema(direction.Target())
	if err != nil {
		return nil, err
	}
	base := []converter.Option{
		converter.WithCache(r.cache),
		converter.WithParser(src.Parser),
		converter.WithSerializer(dst.Serializer),
	}
	return converter.New(direction, append(base, opts...)...)
}

// ClearCache drops every cached document
func (r *Registry) ClearCache() {
	r.cache.Clear()
}
