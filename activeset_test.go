package statechart

import (
	"testing"

	"github.com/gostatechart/statechart/internal/ir"
)

func parallelTreeForActiveSet(t *testing.T) *ir.Tree {
	t.Helper()
	tree := ir.NewTree("top")
	tree.AddNode(&ir.Node{ID: "top", Kind: ir.KindParallel, Children: []ir.NodeID{"r1", "r2"}, Joints: []ir.NodeID{"j"}})
	tree.AddNode(&ir.Node{ID: "r1", Kind: ir.KindComposite, Parent: "top", Children: []ir.NodeID{"x1", "x2"}, Initial: "x1"})
	tree.AddNode(&ir.Node{ID: "x1", Kind: ir.KindSimple, Parent: "r1"})
	tree.AddNode(&ir.Node{ID: "x2", Kind: ir.KindSimple, Parent: "r1"})
	tree.AddNode(&ir.Node{ID: "r2", Kind: ir.KindComposite, Parent: "top", Children: []ir.NodeID{"y1", "y2"}, Initial: "y1"})
	tree.AddNode(&ir.Node{ID: "y1", Kind: ir.KindSimple, Parent: "r2"})
	tree.AddNode(&ir.Node{ID: "y2", Kind: ir.KindSimple, Parent: "r2"})
	tree.AddNode(&ir.Node{ID: "j", Kind: ir.KindJoint, Guards: []ir.NodeID{"x1", "y1"}})
	tree.Finalize()
	if err := ir.Validate(tree); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return tree
}

func TestActiveSetRecomputeJointsBecomesActive(t *testing.T) {
	tree := parallelTreeForActiveSet(t)
	a := newActiveSet(tree)
	a.activate("top")
	a.activate("r1")
	a.activate("x1")
	a.activate("r2")
	a.activate("y1")

	newlyActive, newlyInactive := a.recomputeJoints(nil)
	if len(newlyInactive) != 0 {
		t.Errorf("newlyInactive = %v, want none", newlyInactive)
	}
	if len(newlyActive) != 1 || newlyActive[0] != "j" {
		t.Errorf("newlyActive = %v, want [j]", newlyActive)
	}
	if !a.IsJointActive("j") {
		t.Errorf("j should be active")
	}
}

func TestActiveSetRecomputeJointsBecomesInactive(t *testing.T) {
	tree := parallelTreeForActiveSet(t)
	a := newActiveSet(tree)
	a.activate("top")
	a.activate("r1")
	a.activate("x1")
	a.activate("r2")
	a.activate("y1")
	a.recomputeJoints(nil)

	a.deactivate("x1")
	a.activate("x2")
	newlyActive, newlyInactive := a.recomputeJoints(tree.JointsGuardedBy("x1"))

	if len(newlyActive) != 0 {
		t.Errorf("newlyActive = %v, want none", newlyActive)
	}
	if len(newlyInactive) != 1 || newlyInactive[0] != "j" {
		t.Errorf("newlyInactive = %v, want [j]", newlyInactive)
	}
	if a.IsJointActive("j") {
		t.Errorf("j should be inactive")
	}
}

func TestActiveSetClearResetsEverything(t *testing.T) {
	tree := parallelTreeForActiveSet(t)
	a := newActiveSet(tree)
	a.activate("top")
	a.activate("r1")
	a.activate("x1")
	a.activate("r2")
	a.activate("y1")
	a.recomputeJoints(nil)

	a.clear()

	if a.IsActive("top") || a.IsJointActive("j") {
		t.Errorf("clear should remove all active nodes and joints")
	}
	if len(a.Active()) != 0 {
		t.Errorf("Active() = %v, want empty", a.Active())
	}
}

func TestActiveSetStringRendersParallelAndJoint(t *testing.T) {
	tree := parallelTreeForActiveSet(t)
	a := newActiveSet(tree)
	a.activate("top")
	a.activate("r1")
	a.activate("x1")
	a.activate("r2")
	a.activate("y1")
	a.recomputeJoints(nil)

	got := a.String()
	want := "top[r1.x1, r2.y1, j]"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
