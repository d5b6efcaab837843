package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X .../cmd.Version=..."
var Version = "0.1.0"

var cfgFile string

// registry is shared by every command of one invocation
var registry *formats.Registry

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "etl-bridge",
	Short: "Convert, validate and document ETL workflow files",
	Long: `etl-bridge reads visual ETL workflows (.yxmd) and data-integration
packages (.xml), converts between the two through a shared graph model,
checks them against a set of lint rules and writes Markdown documentation.

Files may be compressed with gzip, bzip2, xz or zstd.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(cfgFile); err != nil {
			return err
		}

		// CLI flags override the file and environment
		v := config.Viper()
		flags := cmd.Flags()
		if err := v.BindPFlag("debug", flags.Lookup("debug")); err != nil {
			return err
		}
		if err := v.BindPFlag("log_format", flags.Lookup("log-format")); err != nil {
			return err
		}
		if err := config.Reload(); err != nil {
			return err
		}

		if err := logger.InitLogger(logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}); err != nil {
			return err
		}

		logger.LogDebug("Configuration loaded", map[string]interface{}{
			"config_file": config.ConfigFile,
			"command":     cmd.Name(),
		})

		registry = formats.NewRegistry(nil)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("ETL_BRIDGE_CONFIG"), "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows the application version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "etl-bridge v%s\n", Version)
	},
}
