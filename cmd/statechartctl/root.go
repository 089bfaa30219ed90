package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statechartctl",
	Short: "Inspect and export hierarchical state chart YAML documents",
	Long:  `statechartctl loads a chart declared with the yamlspec YAML schema and validates, exports, or diagrams it without running an engine.`,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "path to the chart YAML document (required)")
	_ = rootCmd.MarkPersistentFlagRequired("file")
}
