package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/converter"
	"github.com/deploymenttheory/go-etl-bridge/internal/docs"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// Handler processes a single file. It fills res and returns an error when the
// file failed. Setting res.Status to StatusSkipped marks the file as ignored.
type Handler func(r *Job, path string, res *FileResult) error

func createHandlerRegistry() map[string]Handler {
	return map[string]Handler{
		OpParse:      handleParse,
		OpConvertA2O: handleConvert(converter.AlteryxToOdi),
		OpConvertO2A: handleConvert(converter.OdiToAlteryx),
		OpValidate:   handleValidate,
		OpDocs:       handleDocs,
	}
}

// formatFor resolves the file's format, marking unsupported files as skipped
func formatFor(r *Job, path string, res *FileResult) (*formats.Format, bool) {
	f, err := r.Registry.ForPath(path)
	if err != nil {
		res.Status = StatusSkipped
		res.Error = err.Error()
		return nil, false
	}
	res.Schema = f.Schema
	return f, true
}

func handleParse(r *Job, path string, res *FileResult) error {
	f, ok := formatFor(r, path, res)
	if !ok {
		return nil
	}
	doc, err := f.Parser.Parse(path)
	if err != nil {
		return err
	}
	res.Nodes = doc.Graph.NodeCount()
	res.Edges = doc.Graph.EdgeCount()
	return nil
}

func handleConvert(direction converter.Direction) Handler {
	return func(r *Job, path string, res *FileResult) error {
		f, ok := formatFor(r, path, res)
		if !ok {
			return nil
		}
		if f.Schema != direction.Source() {
			res.Status = StatusSkipped
			res.Error = fmt.Sprintf("expected a %s document, got %s", direction.Source(), f.Schema)
			return nil
		}

		c, err := r.Registry.Converter(direction)
		if err != nil {
			return err
		}

		output := filepath.Join(r.Config.OutputDir, direction.OutputName(path))
		if r.Compress != compression.None {
			output += r.Compress.Suffix()
		}

		result := c.Convert(path, output)
		res.Output = output
		res.Warnings = result.Warnings
		stats := result.Stats
		res.Conversion = &stats
		r.Metrics.ObserveConversion(string(direction), stats.Converted, stats.Skipped)

		if !result.Success {
			return fmt.Errorf("%w: %s", errors.ErrConversionAborted, strings.Join(result.Errors, "; "))
		}
		if result.Target != nil {
			res.Nodes = result.Target.Graph.NodeCount()
			res.Edges = result.Target.Graph.EdgeCount()
		}
		return nil
	}
}

func handleValidate(r *Job, path string, res *FileResult) error {
	f, ok := formatFor(r, path, res)
	if !ok {
		return nil
	}
	v, err := r.Registry.Validator(f.Schema)
	if err != nil {
		return err
	}

	result := v.Validate(path)
	res.Issues = map[string]int{
		"error":   result.ErrorCount(),
		"warning": result.WarningCount(),
		"info":    result.InfoCount(),
	}
	r.Metrics.ObserveIssues(res.Issues)
	for _, issue := range result.Issues {
		res.Warnings = append(res.Warnings, issue.String())
	}
	return result.Err()
}

func handleDocs(r *Job, path string, res *FileResult) error {
	f, ok := formatFor(r, path, res)
	if !ok {
		return nil
	}
	e := docs.NewExporter(r.Registry, docs.WithValidation(!r.Config.SkipDocValidation))

	var (
		out string
		err error
	)
	if f.Schema == workflow.SchemaOdi {
		out, err = e.ExportPackage(path, r.Config.OutputDir)
	} else {
		out, err = e.ExportWorkflow(path, r.Config.OutputDir)
	}
	res.Output = out
	return err
}
