// Package converter translates workflow graphs between the two schemas using
// the type lookup tables, recording every node that could not be mapped.
package converter

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/mapping"
	"github.com/deploymenttheory/go-etl-bridge/internal/parser"
	"github.com/deploymenttheory/go-etl-bridge/internal/serializer"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// Direction names a conversion direction
type Direction string

const (
	// AlteryxToOdi converts visual workflows into packages
	AlteryxToOdi Direction = "a2o"
	// OdiToAlteryx converts packages into visual workflows
	OdiToAlteryx Direction = "o2a"
)

// ParseDirection accepts "a2o"/"o2a" and the long forms "alteryx-to-odi"/"odi-to-alteryx"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a2o", "alteryx-to-odi", "forward":
		return AlteryxToOdi, nil
	case "o2a", "odi-to-alteryx", "reverse":
		return OdiToAlteryx, nil
	}
	return "", fmt.Errorf("%w: unknown conversion direction %q", errors.ErrInvalidArgument, s)
}

// Source returns the schema read by this direction
func (d Direction) Source() workflow.Schema {
	if d == OdiToAlteryx {
		return workflow.SchemaOdi
	}
	return workflow.SchemaAlteryx
}

// Target returns the schema written by this direction
func (d Direction) Target() workflow.Schema {
	return d.Source().Other()
}

// OutputName names the converted file after its source, e.g. orders.yxmd
// becomes orders_odi.xml
func (d Direction) OutputName(source string) string {
	if d == OdiToAlteryx {
		return parser.DocumentName(source) + "_alteryx.yxmd"
	}
	return parser.DocumentName(source) + "_odi.xml"
}

// Stats counts the outcome of a conversion
type Stats struct {
	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Edges     int `json:"edges" yaml:"edges"`
}

// Result is the outcome of a single conversion. Success is false only when
// the source could not be loaded or the output could not be produced.
type Result struct {
	Success    bool     `json:"success" yaml:"success"`
	Document   string   `json:"-" yaml:"-"`
	OutputPath string   `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
	Warnings   []string `json:"warnings" yaml:"warnings"`
	Errors     []string `json:"errors" yaml:"errors"`
	Stats      Stats    `json:"stats" yaml:"stats"`

	// Target is the converted document, nil when nothing was produced
	Target *workflow.Document `json:"-" yaml:"-"`
}

// Option configures a Converter
type Option func(*Converter)

// WithTable replaces the default mapping table
func WithTable(t mapping.Table) Option {
	return func(c *Converter) { c.table = t }
}

// WithCache shares a parse cache with the converter's source parser
func WithCache(cache *parser.Cache) Option {
	return func(c *Converter) { c.cache = cache }
}

// WithParser replaces the source parser
func WithParser(p parser.Parser) Option {
	return func(c *Converter) { c.source = p }
}

// WithSerializer replaces the target serializer
func WithSerializer(s serializer.Serializer) Option {
	return func(c *Converter) { c.target = s }
}

// Converter converts documents in one direction
type Converter struct {
	direction Direction
	table     mapping.Table
	cache     *parser.Cache
	source    parser.Parser
	target    serializer.Serializer
}

// New creates a converter for the given direction
func New(direction Direction, opts ...Option) (*Converter, error) {
	if direction != AlteryxToOdi && direction != OdiToAlteryx {
		return nil, fmt.Errorf("%w: unknown conversion direction %q", errors.ErrInvalidArgument, direction)
	}

	c := &Converter{direction: direction, table: mapping.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if c.source == nil {
		if direction == AlteryxToOdi {
			c.source = parser.NewAlteryxParser(c.cache)
		} else {
			c.source = parser.NewOdiParser(c.cache)
		}
	}
	if c.target == nil {
		if direction == AlteryxToOdi {
			c.target = serializer.NewOdiSerializer()
		} else {
			c.target = serializer.NewAlteryxSerializer()
		}
	}
	return c, nil
}

// NewForward creates an Alteryx to ODI converter
func NewForward(opts ...Option) *Converter {
	c, _ := New(AlteryxToOdi, opts...)
	return c
}

// NewReverse creates an ODI to Alteryx converter
func NewReverse(opts ...Option) *Converter {
	c, _ := New(OdiToAlteryx, opts...)
	return c
}

// Direction returns the converter's direction
func (c *Converter) Direction() Direction {
	return c.direction
}

// Convert parses the document at path and converts it. When output is not
// empty the result is also written there.
func (c *Converter) Convert(path, output string) Result {
	doc, err := c.source.Parse(path)
	if err != nil {
		return failed(fmt.Sprintf("failed to parse %s document: %v", c.direction.Source(), err))
	}
	return c.ConvertDocument(doc, output)
}

// ConvertText converts raw document content
func (c *Converter) ConvertText(content, output string) Result {
	doc, err := c.source.ParseText(content)
	if err != nil {
		return failed(fmt.Sprintf("failed to parse %s document: %v", c.direction.Source(), err))
	}
	return c.ConvertDocument(doc, output)
}

// ConvertDocument converts an already parsed document
func (c *Converter) ConvertDocument(doc *workflow.Document, output string) Result {
	if doc == nil {
		return failed("no document to convert")
	}
	if doc.Schema != c.direction.Source() {
		return failed(fmt.Sprintf("expected a %s document, got %s", c.direction.Source(), doc.Schema))
	}

	var target *workflow.Document
	var stats Stats
	var warnings []string
	if c.direction == AlteryxToOdi {
		target, stats, warnings = c.forward(doc)
	} else {
		target, stats, warnings = c.reverse(doc)
	}

	result := Result{
		Success:  true,
		Warnings: warnings,
		Errors:   []string{},
		Stats:    stats,
		Target:   target,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}

	if output != "" {
		data, err := serializer.WriteFile(c.target, target, output)
		result.Document = string(data)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("failed to write %s: %v", output, err))
			logger.LogError("Conversion output not written", err, map[string]interface{}{"output": output})
		} else {
			result.OutputPath = output
		}
	} else {
		data, err := c.target.Serialize(target)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
		}
		result.Document = string(data)
	}

	logger.LogInfo("Conversion complete", map[string]interface{}{
		"direction": string(c.direction),
		"document":  doc.Name,
		"converted": stats.Converted,
		"skipped":   stats.Skipped,
		"edges":     stats.Edges,
	})
	return result
}

func failed(reason string) Result {
	logger.LogWarn("Conversion failed", map[string]interface{}{"reason": reason})
	return Result{Success: false, Warnings: []string{}, Errors: []string{reason}}
}
