package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gostatechart/statechart/internal/ir"
)

// WriteDOT renders tree as a Graphviz DOT digraph: a cluster per
// composite/parallel subtree, a diamond node per joint with a dashed
// edge to each guard, and active nodes filled. There is no teacher
// precedent for a DOT renderer (felixgeelhaar-statekit only exports
// XState JSON); this is grounded on the same Exporter walk as
// json.go, adapted to Graphviz's cluster/node/edge vocabulary.
func WriteDOT(tree *ir.Tree, active ActiveQuery, w io.Writer) error {
	d := &dotWriter{tree: tree, active: active, w: w}
	return d.write()
}

type dotWriter struct {
	tree   *ir.Tree
	active ActiveQuery
	w      io.Writer
	err    error
}

func (d *dotWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dotWriter) write() error {
	d.printf("digraph statechart {\n")
	d.printf("  rankdir=TB;\n")
	d.printf("  node [shape=box, style=rounded];\n")

	d.writeSubtree(d.tree.Top, "  ")
	d.writeGuardEdges("  ")

	d.printf("}\n")
	return d.err
}

// writeSubtree recurses pre-order, wrapping composite/parallel nodes
// in a DOT cluster so nesting is visible in the rendered graph.
func (d *dotWriter) writeSubtree(id ir.NodeID, indent string) {
	n := d.tree.Node(id)
	if n == nil {
		return
	}

	if n.IsComposite() || n.IsParallel() {
		d.printf("%ssubgraph cluster_%s {\n", indent, clusterName(id))
		d.printf("%s  label=%q;\n", indent, labelFor(n, d.isParallelRegionLabel(n)))
		if n.IsParallel() {
			d.printf("%s  style=dashed;\n", indent)
		}
		d.writeNode(id, indent+"  ")
		for _, c := range n.Children {
			d.writeSubtree(c, indent+"  ")
		}
		for _, j := range n.Joints {
			d.writeJointNode(j, indent+"  ")
		}
		d.printf("%s}\n", indent)
		return
	}

	d.writeNode(id, indent)
}

func (d *dotWriter) isParallelRegionLabel(n *ir.Node) string {
	if n.IsParallel() {
		return "parallel"
	}
	return "composite"
}

func (d *dotWriter) writeNode(id ir.NodeID, indent string) {
	d.printf("%s%s [label=%q%s];\n", indent, sanitize(id), string(id), d.activeAttr(id))
}

func (d *dotWriter) writeJointNode(id ir.NodeID, indent string) {
	d.printf("%s%s [label=%q, shape=diamond%s];\n", indent, sanitize(id), string(id), d.activeJointAttr(id))
}

func (d *dotWriter) activeAttr(id ir.NodeID) string {
	if d.active != nil && d.active.Active(id) {
		return ", style=\"rounded,filled\", fillcolor=lightgreen"
	}
	return ""
}

func (d *dotWriter) activeJointAttr(id ir.NodeID) string {
	if aq, ok := d.active.(interface{ ActiveJoint(ir.NodeID) bool }); ok && aq.ActiveJoint(id) {
		return ", style=filled, fillcolor=lightgreen"
	}
	return ""
}

// writeGuardEdges draws the composite/parallel parent-child edges and
// the dashed joint-to-guard edges, after all nodes have been declared
// so Graphviz can resolve every reference regardless of cluster nesting.
func (d *dotWriter) writeGuardEdges(indent string) {
	ids := append([]ir.NodeID{}, d.tree.DeclOrder()...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range d.tree.DeclOrder() {
		n := d.tree.Node(id)
		for _, c := range n.Children {
			d.printf("%s%s -> %s;\n", indent, sanitize(id), sanitize(c))
		}
		if n.IsComposite() && n.Initial != "" {
			d.printf("%s%s -> %s [style=dotted, label=\"initial\"];\n", indent, sanitize(id), sanitize(n.Initial))
		}
		for _, j := range n.Joints {
			d.printf("%s%s -> %s [style=dashed, label=\"joint\"];\n", indent, sanitize(id), sanitize(j))
		}
	}
	for _, j := range d.tree.Joints() {
		n := d.tree.Node(j)
		for _, g := range n.Guards {
			d.printf("%s%s -> %s [style=dashed, color=gray, label=\"guard\"];\n", indent, sanitize(j), sanitize(g))
		}
	}
}

func labelFor(n *ir.Node, kind string) string {
	return fmt.Sprintf("%s (%s)", n.ID, kind)
}

// sanitize maps a NodeID to a safe DOT node identifier; NodeIDs are
// arbitrary strings and may contain characters DOT bare identifiers
// disallow, so every node reference is quoted instead of bared.
func sanitize(id ir.NodeID) string {
	return fmt.Sprintf("%q", string(id))
}

// clusterName maps a NodeID to a bare identifier suitable for a DOT
// "cluster_NAME" subgraph name, which cannot itself be a quoted string.
func clusterName(id ir.NodeID) string {
	var b strings.Builder
	for _, r := range string(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
