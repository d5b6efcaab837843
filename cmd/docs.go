package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/docs"
	"github.com/spf13/cobra"
)

var (
	docsOutputDir    string
	docsNoValidation bool
)

var docsCmd = &cobra.Command{
	Use:   "docs <file>",
	Short: "Write Markdown documentation for a workflow or package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := docsOutputDir
		if outDir == "" {
			outDir = config.Instance.Docs.OutputDir
		}
		includeValidation := config.Instance.Docs.IncludeValidation && !docsNoValidation

		e := docs.NewExporter(registry, docs.WithValidation(includeValidation))
		path, err := e.Export(args[0], outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documentation written to %s\n", path)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsOutputDir, "output-dir", "", "Directory for the generated Markdown (default from config)")
	docsCmd.Flags().BoolVar(&docsNoValidation, "no-validation", false, "Leave the validation section out")
	rootCmd.AddCommand(docsCmd)
}
