package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/converter"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	convertDirection string
	convertOutput    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a workflow into a package or a package into a workflow",
	Long: `Convert translates every node through the type mapping tables. Nodes
without a mapping are skipped and reported as warnings.

Without --direction the direction follows the input file type. Without
--output the result is named <name>_odi.xml or <name>_alteryx.yxmd and
written to conversion.output_dir, or beside the input when that is unset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		direction, err := resolveDirection(input)
		if err != nil {
			return err
		}

		output := convertOutput
		if output == "" {
			output, err = defaultOutput(direction, input)
			if err != nil {
				return err
			}
		}

		c, err := registry.Converter(direction)
		if err != nil {
			return err
		}
		result := c.Convert(input, output)

		out := cmd.OutOrStdout()
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if !result.Success {
			return fmt.Errorf("%w: %s", errors.ErrConversionAborted, strings.Join(result.Errors, "; "))
		}

		fmt.Fprintf(out, "Converted %d node(s), skipped %d, %d edge(s) -> %s\n",
			result.Stats.Converted, result.Stats.Skipped, result.Stats.Edges, result.OutputPath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertDirection, "direction", "d", "", "Conversion direction: a2o or o2a (default from the input file type)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file; a compression suffix compresses it")
	rootCmd.AddCommand(convertCmd)
}

func resolveDirection(input string) (converter.Direction, error) {
	if convertDirection != "" {
		return converter.ParseDirection(convertDirection)
	}
	f, err := registry.ForPath(input)
	if err != nil {
		return "", err
	}
	if f.Schema == workflow.SchemaOdi {
		return converter.OdiToAlteryx, nil
	}
	return converter.AlteryxToOdi, nil
}

func defaultOutput(direction converter.Direction, input string) (string, error) {
	dir := config.Instance.Conversion.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	output := filepath.Join(dir, direction.OutputName(input))

	format, err := compression.ParseFormat(config.Instance.Conversion.Compress)
	if err != nil {
		return "", err
	}
	if format != compression.None {
		output += format.Suffix()
	}
	return output, nil
}
