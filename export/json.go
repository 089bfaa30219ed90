// Package export renders a declared state tree as JSON or Graphviz DOT
// for debugging and documentation, generalizing felixgeelhaar-statekit's
// XState JSON exporter (export/xstate.go, export/cli.go) from its
// single-parent-per-state shape to one that can represent parallel
// regions and joints, neither of which XState's format has a slot for.
package export

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gostatechart/statechart/internal/ir"
)

// NodeDoc is one node's exported shape: structure only, no handler
// bodies (handlers are Go closures and have no stable textual form).
type NodeDoc struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	Initial  string   `json:"initial,omitempty"`
	Guards   []string `json:"guards,omitempty"`
	Joints   []string `json:"joints,omitempty"`
	Active   bool     `json:"active,omitempty"`
}

// ChartDoc is the exported shape of a whole tree, optionally annotated
// with a live active configuration (see WithActive).
type ChartDoc struct {
	Top   string    `json:"top"`
	Nodes []NodeDoc `json:"nodes"`
}

// ActiveQuery reports whether node is active, the shape
// *statechart.Engine satisfies via its Active method (an ActiveSet
// answers the same question through IsActive instead) — the export
// package depends on no concrete type to avoid an import cycle with
// the root package's tests.
type ActiveQuery interface {
	Active(node ir.NodeID) bool
}

// Exporter renders one *ir.Tree to ChartDoc, optionally marking nodes
// active against a live ActiveQuery.
type Exporter struct {
	tree   *ir.Tree
	active ActiveQuery
}

// NewExporter wraps tree for export.
func NewExporter(tree *ir.Tree) *Exporter { return &Exporter{tree: tree} }

// WithActive annotates every exported node with its current activity.
func (x *Exporter) WithActive(active ActiveQuery) *Exporter {
	x.active = active
	return x
}

// Export walks the tree in declaration order and builds a ChartDoc.
func (x *Exporter) Export() (*ChartDoc, error) {
	doc := &ChartDoc{Top: string(x.tree.Top)}
	for _, id := range x.tree.DeclOrder() {
		n := x.tree.Node(id)
		kind, err := kindName(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("export: node %s: %w", id, err)
		}
		nd := NodeDoc{
			ID:      string(n.ID),
			Kind:    kind,
			Parent:  string(n.Parent),
			Initial: string(n.Initial),
		}
		for _, c := range n.Children {
			nd.Children = append(nd.Children, string(c))
		}
		for _, g := range n.Guards {
			nd.Guards = append(nd.Guards, string(g))
		}
		for _, j := range n.Joints {
			nd.Joints = append(nd.Joints, string(j))
		}
		if x.active != nil {
			nd.Active = x.active.Active(id)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc, nil
}

func kindName(k ir.NodeKind) (string, error) {
	switch k {
	case ir.KindSimple:
		return "simple", nil
	case ir.KindComposite:
		return "composite", nil
	case ir.KindParallel:
		return "parallel", nil
	case ir.KindJoint:
		return "joint", nil
	default:
		return "", fmt.Errorf("unknown node kind %d", k)
	}
}

// Options configures JSON export behavior, matching
// felixgeelhaar-statekit's ExportOptions shape.
type Options struct {
	PrettyPrint bool
	Indent      string
	Output      io.Writer
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{PrettyPrint: true, Indent: "  ", Output: os.Stdout}
}

// WriteJSON exports tree and writes it as JSON per opts.
func WriteJSON(tree *ir.Tree, active ActiveQuery, opts Options) error {
	x := NewExporter(tree)
	if active != nil {
		x.WithActive(active)
	}
	doc, err := x.Export()
	if err != nil {
		return err
	}
	return writeJSON(doc, opts)
}

func writeJSON(v any, opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var data []byte
	var err error
	if opts.PrettyPrint {
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		data, err = json.MarshalIndent(v, "", indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("export: JSON marshal: %w", err)
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	if _, err := out.Write([]byte("\n")); err != nil {
		return fmt.Errorf("export: write newline: %w", err)
	}
	return nil
}

// RunCLI provides a flag-based entry point for ad-hoc export, the same
// shape as felixgeelhaar-statekit's export.RunCLI.
func RunCLI(tree *ir.Tree, active ActiveQuery, args []string) error {
	fs := flag.NewFlagSet("statechart-export", flag.ContinueOnError)

	format := fs.String("format", "json", "output format: json|dot")
	pretty := fs.Bool("pretty", true, "pretty-print JSON output")
	output := fs.String("o", "", "output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("export: create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch *format {
	case "json":
		return WriteJSON(tree, active, Options{PrettyPrint: *pretty, Indent: "  ", Output: out})
	case "dot":
		return WriteDOT(tree, active, out)
	default:
		return fmt.Errorf("export: unknown format %q", *format)
	}
}
