package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gostatechart/statechart/internal/ir"
)

func sampleTree(t *testing.T) *ir.Tree {
	t.Helper()
	tree := ir.NewTree("top")
	tree.AddNode(&ir.Node{ID: "top", Kind: ir.KindComposite, Children: []ir.NodeID{"a", "b"}, Initial: "a"})
	tree.AddNode(&ir.Node{ID: "a", Kind: ir.KindSimple, Parent: "top"})
	tree.AddNode(&ir.Node{ID: "b", Kind: ir.KindParallel, Parent: "top", Children: []ir.NodeID{"r1", "r2"}, Joints: []ir.NodeID{"j"}})
	tree.AddNode(&ir.Node{ID: "r1", Kind: ir.KindSimple, Parent: "b"})
	tree.AddNode(&ir.Node{ID: "r2", Kind: ir.KindSimple, Parent: "b"})
	tree.AddNode(&ir.Node{ID: "j", Kind: ir.KindJoint, Guards: []ir.NodeID{"r1", "r2"}})
	tree.Finalize()
	require.Nil(t, ir.Validate(tree))
	return tree
}

type fakeActive struct{ nodes map[ir.NodeID]bool }

func (f fakeActive) Active(id ir.NodeID) bool { return f.nodes[id] }

func TestExporterExport(t *testing.T) {
	tree := sampleTree(t)
	doc, err := NewExporter(tree).Export()
	require.NoError(t, err)
	require.Equal(t, "top", doc.Top)
	require.Len(t, doc.Nodes, 6)

	var top NodeDoc
	for _, n := range doc.Nodes {
		if n.ID == "top" {
			top = n
		}
	}
	require.Equal(t, "composite", top.Kind)
	require.Equal(t, "a", top.Initial)
	require.Equal(t, []string{"a", "b"}, top.Children)
}

func TestExporterWithActive(t *testing.T) {
	tree := sampleTree(t)
	active := fakeActive{nodes: map[ir.NodeID]bool{"top": true, "a": true}}
	doc, err := NewExporter(tree).WithActive(active).Export()
	require.NoError(t, err)

	for _, n := range doc.Nodes {
		if n.ID == "a" {
			require.True(t, n.Active)
		}
		if n.ID == "b" {
			require.False(t, n.Active)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	tree := sampleTree(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(tree, nil, Options{PrettyPrint: false, Output: &buf}))

	var doc ChartDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "top", doc.Top)
}

func TestWriteDOTContainsJointAndClusters(t *testing.T) {
	tree := sampleTree(t)
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(tree, nil, &buf))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph statechart {"))
	require.Contains(t, out, "shape=diamond")
	require.Contains(t, out, "cluster_top")
	require.Contains(t, out, "label=\"guard\"")
}

func TestWriteJSONPrettyToWriter(t *testing.T) {
	tree := sampleTree(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(tree, nil, Options{PrettyPrint: true, Output: &buf}))
	require.Contains(t, buf.String(), "\"top\"")
}

func TestUnknownFormatErrors(t *testing.T) {
	tree := sampleTree(t)
	err := RunCLI(tree, nil, []string{"-format=xml"})
	require.Error(t, err)
}
