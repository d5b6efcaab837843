// Package batch applies one operation to every matching file in a directory.
// Files are processed sequentially; a failing file is recorded and the run
// continues with the next one.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/metrics"
	"github.com/google/uuid"
)

// Option configures a Processor
type Option func(*Processor)

// WithRegistry shares a format registry, and with it the parse cache
func WithRegistry(r *formats.Registry) Option {
	return func(p *Processor) { p.registry = r }
}

// WithMetrics records per file outcomes on c
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Processor) { p.metrics = c }
}

// WithHandler registers or replaces the handler for an operation
func WithHandler(operation string, h Handler) Option {
	return func(p *Processor) { p.handlers[operation] = h }
}

// Processor runs batch operations
type Processor struct {
	registry *formats.Registry
	metrics  *metrics.Collector
	handlers map[string]Handler
}

// NewProcessor creates a processor with the built in operations
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{handlers: createHandlerRegistry()}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = formats.NewRegistry(nil)
	}
	return p
}

// Job carries the state shared by the handlers of one Process call
type Job struct {
	Config   *Config
	Registry *formats.Registry
	Metrics  *metrics.Collector
	Compress compression.Format
}

// Process validates cfg, collects the matching files and runs the operation
// on each of them. A configuration problem is returned as an error; per file
// failures are only recorded in the result. Cancelling ctx stops the run
// before the next file.
func (p *Processor) Process(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	handler, ok := p.handlers[cfg.Operation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownOperation, cfg.Operation)
	}
	compress, err := compression.ParseFormat(cfg.Compress)
	if err != nil {
		return nil, err
	}
	hasher, err := cryptoutil.NewHasher(cryptoutil.HashAlgorithm(cfg.HashAlgorithm))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		Operation: cfg.Operation,
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		StartedAt: started,
		Errors:    []string{},
		Files:     []FileResult{},
	}

	files, err := fsutil.FindFiles(cfg.InputDir, cfg.EffectivePattern(), cfg.Recursive)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", errors.ErrPathNotAccessible, cfg.InputDir, err.Error())
	}
	if cfg.MaxFiles > 0 && len(files) > cfg.MaxFiles {
		files = files[:cfg.MaxFiles]
	}
	result.Total = len(files)

	if result.Total == 0 {
		logger.LogWarn("No input files matched", map[string]interface{}{
			"input_dir": cfg.InputDir,
			"pattern":   cfg.EffectivePattern(),
		})
		result.Duration = time.Since(started)
		return result, nil
	}

	if err := fsutil.CreateDirIfNotExists(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", errors.ErrPathNotAccessible, cfg.OutputDir, err.Error())
	}

	logger.LogInfo("Starting batch run", map[string]interface{}{
		"run_id":    result.RunID,
		"operation": cfg.Operation,
		"files":     result.Total,
	})

	r := &Job{Config: &cfg, Registry: p.registry, Metrics: p.metrics, Compress: compress}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("run cancelled after %d of %d files", i, result.Total))
			result.Duration = time.Since(started)
			return result, fmt.Errorf("%w: %s", errors.ErrConversionAborted, err.Error())
		}

		logger.LogDebug(fmt.Sprintf("Processing file %d/%d", i+1, result.Total), map[string]interface{}{
			"path": path,
		})

		fileStart := time.Now()
		res := p.processFile(r, handler, hasher, path)
		p.metrics.ObserveOperation(cfg.Operation, string(res.Status), time.Since(fileStart))

		switch res.Status {
		case StatusOK:
			result.Processed++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", path, res.Error))
			logger.LogError("Batch file failed", nil, map[string]interface{}{
				"path":  path,
				"error": res.Error,
			})
		}
		result.Files = append(result.Files, res)
	}

	result.Duration = time.Since(started)
	logger.LogInfo("Batch run complete", map[string]interface{}{
		"run_id":    result.RunID,
		"processed": result.Processed,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	})
	return result, nil
}

// processFile runs handler on one file. A panic in the handler is turned into
// a failure so the run can continue.
func (p *Processor) processFile(r *Job, handler Handler, hasher *cryptoutil.Hasher, path string) (res FileResult) {
	res = FileResult{Path: path, Status: StatusOK, Operation: r.Config.Operation}

	defer func() {
		if rec := recover(); rec != nil {
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("panic: %v", rec)
		}
	}()

	if data, err := os.ReadFile(path); err == nil {
		res.Digest = hasher.Digest(data)
	}

	if err := handler(r, path, &res); err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
	}
	return res
}
