package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/export"
	"github.com/gostatechart/statechart/internal/ir"
	"github.com/gostatechart/statechart/yamlspec"
)

var (
	exportFormat string
	exportOutput string
	exportPretty bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a chart's structure as JSON or DOT",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		return runExport(path, exportFormat, exportOutput, exportPretty)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "t", "json", "output format: json|dot")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", true, "pretty-print JSON output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(path, format, output string, pretty bool) error {
	chart, err := yamlspec.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	tree, err := chart.Build(statechart.NewHandlerRegistry())
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		return writeFormat(tree, format, pretty, f)
	}
	return writeFormat(tree, format, pretty, out)
}

func writeFormat(tree *ir.Tree, format string, pretty bool, out *os.File) error {
	switch format {
	case "json":
		return export.WriteJSON(tree, nil, export.Options{PrettyPrint: pretty, Indent: "  ", Output: out})
	case "dot":
		return export.WriteDOT(tree, nil, out)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
