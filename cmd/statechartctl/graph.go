package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/export"
	"github.com/gostatechart/statechart/yamlspec"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print a Graphviz DOT diagram of a chart",
	Long:  `Equivalent to "export --format=dot", kept as its own subcommand since diagramming is the most common reason to inspect a chart file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		chart, err := yamlspec.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		tree, err := chart.Build(statechart.NewHandlerRegistry())
		if err != nil {
			return fmt.Errorf("build %s: %w", path, err)
		}
		return export.WriteDOT(tree, nil, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
