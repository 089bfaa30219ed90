package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/yamlspec"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a chart document for structural errors",
	Long:  `Loads the chart named by --file, builds it against an empty handler registry, and reports every ConfigIssue found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if err := runValidate(path); err != nil {
			return err
		}
		fmt.Println("chart is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	chart, err := yamlspec.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	_, err = chart.Build(statechart.NewHandlerRegistry())
	if err != nil {
		var cfgErr *statechart.ConfigError
		if errors.As(err, &cfgErr) {
			for _, issue := range cfgErr.Issues {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", issue.Code, issue.Message)
			}
		}
		return fmt.Errorf("%s is invalid", path)
	}
	return nil
}
