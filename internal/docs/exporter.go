// Package docs extracts descriptive metadata from workflow documents and
// renders it as Markdown.
package docs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/validation"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// DocSuffix is appended to the document name to form the output file name
const DocSuffix = "_doc.md"

const timestampLayout = "2006-01-02 15:04:05"

// Option configures an Exporter
type Option func(*Exporter)

// WithValidation toggles the validation section
func WithValidation(include bool) Option {
	return func(e *Exporter) { e.includeValidation = include }
}

// WithClock replaces the clock used for the generation timestamp
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// Exporter writes Markdown documentation for workflows and packages
type Exporter struct {
	registry          *formats.Registry
	includeValidation bool
	now               func() time.Time
}

// NewExporter creates an exporter. The validation section is included by default.
func NewExporter(registry *formats.Registry, opts ...Option) *Exporter {
	if registry == nil {
		registry = formats.NewRegistry(nil)
	}
	e := &Exporter{registry: registry, includeValidation: true, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export picks the schema from the file extension
func (e *Exporter) Export(path, outDir string) (string, error) {
	f, err := e.registry.ForPath(path)
	if err != nil {
		return "", err
	}
	return e.export(f.Schema, path, outDir)
}

// ExportWorkflow documents a visual workflow and returns the written path
func (e *Exporter) ExportWorkflow(path, outDir string) (string, error) {
	return e.export(workflow.SchemaAlteryx, path, outDir)
}

// ExportPackage documents a package and returns the written path
func (e *Exporter) ExportPackage(path, outDir string) (string, error) {
	return e.export(workflow.SchemaOdi, path, outDir)
}

func (e *Exporter) export(schema workflow.Schema, path, outDir string) (string, error) {
	f, err := e.registry.ForSchema(schema)
	if err != nil {
		return "", err
	}
	doc, err := f.Parser.Parse(path)
	if err != nil {
		return "", err
	}

	var result *validation.Result
	if e.includeValidation {
		result = validation.New(f.Parser, f.Rules).ValidateDocument(doc)
		result.Path = path
	}

	content, err := e.Render(doc, result)
	if err != nil {
		return "", err
	}

	out := filepath.Join(outDir, FileName(doc.Name))
	if err := fsutil.WriteFile(out, content, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %s", errors.ErrFileWriteError, out, err.Error())
	}

	logger.LogInfo("Documentation exported", map[string]interface{}{
		"source": path,
		"output": out,
		"schema": string(schema),
	})
	return out, nil
}

// Render produces the Markdown for doc. result may be nil.
func (e *Exporter) Render(doc *workflow.Document, result *validation.Result) ([]byte, error) {
	var (
		tmpl *template.Template
		data any
	)
	generated := e.now().Format(timestampLayout)

	switch doc.Schema {
	case workflow.SchemaAlteryx:
		meta := ExtractWorkflow(doc)
		tools := meta.Tools
		more := 0
		if len(tools) > maxTools {
			more = len(tools) - maxTools
			tools = tools[:maxTools]
		}
		tmpl = workflowTmpl
		data = struct {
			Meta       WorkflowMetadata
			Generated  string
			Tools      []Tool
			MoreTools  int
			Validation *validation.Result
		}{meta, generated, tools, more, result}
	case workflow.SchemaOdi:
		tmpl = packageTmpl
		data = struct {
			Meta       PackageMetadata
			Generated  string
			Validation *validation.Result
		}{ExtractPackage(doc), generated, result}
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownSchema, doc.Schema)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrSerializeFailed, err.Error())
	}
	return buf.Bytes(), nil
}

// FileName returns the documentation file name for a document name
func FileName(name string) string {
	if name == "" {
		name = "document"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	return safe + DocSuffix
}
