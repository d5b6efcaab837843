package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/deploymenttheory/go-etl-bridge/internal/batch"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	batchJob         string
	batchOutputDir   string
	batchOperation   string
	batchRecursive   bool
	batchPattern     string
	batchMaxFiles    int
	batchCompress    string
	batchReport      string
	batchMetricsFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Apply one operation to every matching file in a directory",
	Long: `Batch runs parse, convert_a2o, convert_o2a, validate or docs over a
directory. A file that fails is recorded and the run moves on to the next one.

The run can be described in a job file (YAML, JSON or TOML) with --job; the
directory argument and any flag given on the command line override it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := batchConfig(cmd, args)
		if err != nil {
			return err
		}

		metricsFile := batchMetricsFile
		if metricsFile == "" {
			metricsFile = config.Instance.Metrics.File
		}
		var collector *metrics.Collector
		if metricsFile != "" {
			collector = metrics.NewCollector()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := batch.NewProcessor(batch.WithRegistry(registry), batch.WithMetrics(collector))
		result, runErr := p.Process(ctx, *cfg)
		if result == nil {
			return runErr
		}

		printBatchSummary(cmd.OutOrStdout(), result)

		if batchReport != "" {
			report := batchReport
			if filepath.Ext(report) == "" {
				report += "." + config.Instance.Batch.ReportFormat
			}
			if err := result.WriteReport(report); err != nil {
				return err
			}
			logger.LogInfo("Batch report written", map[string]interface{}{"path": report})
		}
		if collector != nil {
			if err := collector.Write(metricsFile); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}
		if result.Total == 0 {
			return fmt.Errorf("%w: %s in %s", errors.ErrNoInputFiles, cfg.EffectivePattern(), cfg.InputDir)
		}
		if result.Failed > 0 {
			return fmt.Errorf("%w: %d of %d file(s) failed", errors.ErrBatchFailed, result.Failed, result.Total)
		}
		return nil
	},
}

func init() {
	flags := batchCmd.Flags()
	flags.StringVar(&batchJob, "job", "", "Batch job file describing the run")
	flags.StringVar(&batchOutputDir, "output-dir", "", "Directory for converted files and documentation")
	flags.StringVar(&batchOperation, "operation", batch.OpConvertA2O, "Operation: parse, convert_a2o, convert_o2a, validate or docs")
	flags.BoolVarP(&batchRecursive, "recursive", "r", false, "Descend into subdirectories")
	flags.StringVar(&batchPattern, "pattern", "", "Glob matched against file names (default depends on the operation)")
	flags.IntVar(&batchMaxFiles, "max-files", 0, "Process at most this many files, 0 for all")
	flags.StringVar(&batchCompress, "compress", "", "Compress converted files: gzip, bzip2, xz or zstd")
	flags.StringVar(&batchReport, "report", "", "Write the run report to this file (.json or .yaml)")
	flags.StringVar(&batchMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	rootCmd.AddCommand(batchCmd)
}

// batchConfig layers configuration defaults, the job file, the directory
// argument and explicitly set flags, in that order
func batchConfig(cmd *cobra.Command, args []string) (*batch.Config, error) {
	cfg := &batch.Config{
		OutputDir:         config.Instance.Conversion.OutputDir,
		Operation:         batch.OpConvertA2O,
		Recursive:         config.Instance.Batch.Recursive,
		MaxFiles:          config.Instance.Batch.MaxFiles,
		Compress:          config.Instance.Conversion.Compress,
		HashAlgorithm:     config.Instance.Batch.HashAlgorithm,
		SkipDocValidation: !config.Instance.Docs.IncludeValidation,
	}

	if batchJob != "" {
		job, err := batch.LoadConfig(batchJob)
		if err != nil {
			return nil, err
		}
		cfg = job
	}

	if len(args) == 1 {
		cfg.InputDir = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = batchOutputDir
	}
	if flags.Changed("operation") || cfg.Operation == "" {
		cfg.Operation = batchOperation
	}
	if flags.Changed("recursive") {
		cfg.Recursive = batchRecursive
	}
	if flags.Changed("pattern") {
		cfg.Pattern = batchPattern
	}
	if flags.Changed("max-files") {
		cfg.MaxFiles = batchMaxFiles
	}
	if flags.Changed("compress") {
		cfg.Compress = batchCompress
	}

	if cfg.InputDir == "" {
		return nil, fmt.Errorf("%w: an input directory is required", errors.ErrInvalidArgument)
	}
	return cfg, nil
}

func printBatchSummary(w io.Writer, r *batch.Result) {
	fmt.Fprintf(w, "Run %s: %s on %s\n", r.RunID, r.Operation, r.InputDir)
	fmt.Fprintf(w, "Total: %d  Processed: %d  Failed: %d  Skipped: %d  Success rate: %.1f%%\n",
		r.Total, r.Processed, r.Failed, r.Skipped, r.SuccessRate())
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}
