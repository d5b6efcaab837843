// Package tooling exposes conversion, validation, batch processing and
// documentation export to programs that embed etl-bridge.
package tooling

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-etl-bridge/internal/batch"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/converter"
	"github.com/deploymenttheory/go-etl-bridge/internal/docs"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/validation"
)

// Version of the tooling API
const Version = "0.1.0"

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

// ConversionResult is the outcome of Convert
type ConversionResult = converter.Result

// ValidationResult is the outcome of Validate
type ValidationResult = validation.Result

// BatchConfig describes a batch run
type BatchConfig = batch.Config

// BatchResult is the outcome of Batch
type BatchResult = batch.Result

var (
	mu          sync.Mutex
	initialized bool
	registry    *formats.Registry
)

// Initialize initializes the tooling API with the given options. Calling it
// again has no effect until Shutdown.
func Initialize(options InitOptions) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	if !options.SuppressLog {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogInfo("Tooling API initialized", map[string]interface{}{
			"config_file": options.ConfigFile,
			"debug":       config.Instance.Debug,
			"log_format":  config.Instance.LogFormat,
		})

		// A broken config file is not fatal for embedders; defaults still apply
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	registry = formats.NewRegistry(nil)
	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{
		LogFormat:   "human",
		SuppressLog: true,
	}
}

func ensureInitialized() (*formats.Registry, error) {
	if err := Initialize(DefaultOptions()); err != nil {
		return nil, fmt.Errorf("failed to initialize tooling API: %w", err)
	}
	mu.Lock()
	defer mu.Unlock()
	return registry, nil
}

// Convert converts input and writes the result to output. direction is
// "a2o" or "o2a". The returned error reports an unknown direction or a
// conversion that produced no output; warnings are only in the result.
func Convert(input, output, direction string) (*ConversionResult, error) {
	r, err := ensureInitialized()
	if err != nil {
		return nil, err
	}

	d, err := converter.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	c, err := r.Converter(d)
	if err != nil {
		return nil, err
	}

	result := c.Convert(input, output)
	if !result.Success {
		return &result, fmt.Errorf("%w: %s", errors.ErrConversionAborted, strings.Join(result.Errors, "; "))
	}
	return &result, nil
}

// Validate lints the file at path with the ruleset of its schema. Issues,
// including parse failures, are reported in the result, not as an error.
func Validate(path string) (*ValidationResult, error) {
	r, err := ensureInitialized()
	if err != nil {
		return nil, err
	}

	f, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	v, err := r.Validator(f.Schema)
	if err != nil {
		return nil, err
	}
	return v.Validate(path), nil
}

// ExportDocs writes Markdown documentation for path into outDir and returns
// the written file
func ExportDocs(path, outDir string, includeValidation bool) (string, error) {
	r, err := ensureInitialized()
	if err != nil {
		return "", err
	}
	return docs.NewExporter(r, docs.WithValidation(includeValidation)).Export(path, outDir)
}

// Batch runs one operation over a directory. Per file failures are recorded
// in the result; only configuration problems and cancellation return an error.
func Batch(ctx context.Context, cfg BatchConfig) (*BatchResult, error) {
	r, err := ensureInitialized()
	if err != nil {
		return nil, err
	}
	return batch.NewProcessor(batch.WithRegistry(r)).Process(ctx, cfg)
}

// GetVersion returns the current version of the tooling API
func GetVersion() string {
	return Version
}

// Shutdown flushes logs and drops cached documents
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if !initialized {
		return nil
	}
	logger.LogInfo("Tooling API shutting down", nil)
	registry.ClearCache()
	registry = nil
	initialized = false
	_ = logger.Sync()
	return nil
}
