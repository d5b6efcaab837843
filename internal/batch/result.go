package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/jsonutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/converter"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"gopkg.in/yaml.v3"
)

// Status is the outcome of one file
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// FileResult records what happened to one input file
type FileResult struct {
	Path       string           `json:"path" yaml:"path"`
	Status     Status           `json:"status" yaml:"status"`
	Operation  string           `json:"operation" yaml:"operation"`
	Schema     workflow.Schema  `json:"schema,omitempty" yaml:"schema,omitempty"`
	Output     string           `json:"output,omitempty" yaml:"output,omitempty"`
	Nodes      int              `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges      int              `json:"edges,omitempty" yaml:"edges,omitempty"`
	Conversion *converter.Stats `json:"conversion,omitempty" yaml:"conversion,omitempty"`
	Issues     map[string]int   `json:"issues,omitempty" yaml:"issues,omitempty"`
	Warnings   []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
	Digest     string           `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Result summarises a batch run
type Result struct {
	RunID     string        `json:"runId" yaml:"run_id"`
	Operation string        `json:"operation" yaml:"operation"`
	InputDir  string        `json:"inputDir" yaml:"input_dir"`
	OutputDir string        `json:"outputDir" yaml:"output_dir"`
	StartedAt time.Time     `json:"startedAt" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Total     int           `json:"total" yaml:"total"`
	Processed int           `json:"processed" yaml:"processed"`
	Failed    int           `json:"failed" yaml:"failed"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Errors    []string      `json:"errors" yaml:"errors"`
	Files     []FileResult  `json:"files" yaml:"files"`
}

// SuccessRate is the percentage of files processed without failure
func (r *Result) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Processed) / float64(r.Total) * 100
}

// WriteReport writes the result as YAML when path ends in .yaml or .yml and
// as JSON otherwise
func (r *Result) WriteReport(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
		}
		return fsutil.WriteFile(path, data, 0o644)
	default:
		return jsonutil.WriteJSONFile(path, r)
	}
}
