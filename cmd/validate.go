package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-etl-bridge/internal/config"
	"github.com/deploymenttheory/go-etl-bridge/internal/validation"
	"github.com/spf13/cobra"
)

var validateSeverity string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a workflow or package against the lint rules",
	Long: `Validate applies the ruleset of the file's schema and prints every issue
at or above --severity. The command fails when any error was found, whatever
the display threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := validateSeverity
		if name == "" {
			name = config.Instance.Validation.MinSeverity
		}
		threshold, err := validation.ParseSeverity(name)
		if err != nil {
			return err
		}

		f, err := registry.ForPath(args[0])
		if err != nil {
			return err
		}
		v, err := registry.Validator(f.Schema)
		if err != nil {
			return err
		}
		result := v.Validate(args[0])

		out := cmd.OutOrStdout()
		for _, issue := range result.Filter(threshold) {
			fmt.Fprintln(out, issue.String())
			if issue.Details != "" {
				fmt.Fprintf(out, "    %s\n", issue.Details)
			}
		}
		fmt.Fprintf(out, "%s: %d error(s), %d warning(s), %d info\n",
			result.Path, result.ErrorCount(), result.WarningCount(), result.InfoCount())

		return result.Err()
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateSeverity, "severity", "s", "", "Minimum severity shown: info, warning or error (default from config)")
	rootCmd.AddCommand(validateCmd)
}
