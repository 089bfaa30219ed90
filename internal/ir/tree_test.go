package ir

import "testing"

func parallelWithJointTree() *Tree {
	tree := NewTree("top")
	tree.AddNode(&Node{ID: "top", Kind: KindParallel, Children: []NodeID{"r1", "r2"}, Joints: []NodeID{"j"}})
	tree.AddNode(&Node{ID: "r1", Kind: KindComposite, Parent: "top", Children: []NodeID{"x1", "x2"}, Initial: "x1"})
	tree.AddNode(&Node{ID: "x1", Kind: KindSimple, Parent: "r1"})
	tree.AddNode(&Node{ID: "x2", Kind: KindSimple, Parent: "r1"})
	tree.AddNode(&Node{ID: "r2", Kind: KindComposite, Parent: "top", Children: []NodeID{"y1"}, Initial: "y1"})
	tree.AddNode(&Node{ID: "y1", Kind: KindSimple, Parent: "r2"})
	tree.AddNode(&Node{ID: "j", Kind: KindJoint, Guards: []NodeID{"x1", "y1"}})
	tree.Finalize()
	return tree
}

func TestDeclIndexReflectsAddOrder(t *testing.T) {
	tree := parallelWithJointTree()
	if tree.DeclIndex("top") != 0 {
		t.Errorf("DeclIndex(top) = %d, want 0", tree.DeclIndex("top"))
	}
	if tree.DeclIndex("j") != 6 {
		t.Errorf("DeclIndex(j) = %d, want 6", tree.DeclIndex("j"))
	}
}

func TestDeclIndexUnknownIDSortsLast(t *testing.T) {
	tree := parallelWithJointTree()
	if tree.DeclIndex("ghost") != len(tree.DeclOrder()) {
		t.Errorf("DeclIndex(ghost) = %d, want %d", tree.DeclIndex("ghost"), len(tree.DeclOrder()))
	}
}

func TestJointsGuardedByIndexesByGuard(t *testing.T) {
	tree := parallelWithJointTree()
	if got := tree.JointsGuardedBy("x1"); len(got) != 1 || got[0] != "j" {
		t.Errorf("JointsGuardedBy(x1) = %v, want [j]", got)
	}
	if got := tree.JointsGuardedBy("x2"); len(got) != 0 {
		t.Errorf("JointsGuardedBy(x2) = %v, want none", got)
	}
}

func TestJointsReturnsAllJointsInDeclOrder(t *testing.T) {
	tree := parallelWithJointTree()
	joints := tree.Joints()
	if len(joints) != 1 || joints[0] != "j" {
		t.Errorf("Joints() = %v, want [j]", joints)
	}
}

func TestIsAncestorIsStrict(t *testing.T) {
	tree := parallelWithJointTree()
	if !tree.IsAncestor("top", "x1") {
		t.Error("top should be an ancestor of x1")
	}
	if !tree.IsAncestor("r1", "x1") {
		t.Error("r1 should be an ancestor of x1")
	}
	if tree.IsAncestor("x1", "x1") {
		t.Error("a node is not its own ancestor")
	}
	if tree.IsAncestor("r2", "x1") {
		t.Error("r2 is not an ancestor of x1")
	}
}

func TestPathIncludesBothEnds(t *testing.T) {
	tree := parallelWithJointTree()
	path := tree.Path("x1")
	want := []NodeID{"top", "r1", "x1"}
	if len(path) != len(want) {
		t.Fatalf("Path(x1) = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("Path(x1)[%d] = %s, want %s", i, path[i], want[i])
		}
	}
}

func TestPathOfTopIsJustTop(t *testing.T) {
	tree := parallelWithJointTree()
	path := tree.Path("top")
	if len(path) != 1 || path[0] != "top" {
		t.Errorf("Path(top) = %v, want [top]", path)
	}
}

func TestLCAAcrossDivergentBranches(t *testing.T) {
	tree := parallelWithJointTree()
	if lca := tree.LCA("x1", "y1"); lca != "top" {
		t.Errorf("LCA(x1,y1) = %s, want top", lca)
	}
	if lca := tree.LCA("x1", "x2"); lca != "r1" {
		t.Errorf("LCA(x1,x2) = %s, want r1", lca)
	}
}

func TestDefaultExpandWalksParallelRegionsNotJoints(t *testing.T) {
	tree := parallelWithJointTree()
	expand := tree.DefaultExpand("top")
	want := []NodeID{"top", "r1", "x1", "r2", "y1"}
	if len(expand) != len(want) {
		t.Fatalf("DefaultExpand(top) = %v, want %v", expand, want)
	}
	for i := range want {
		if expand[i] != want[i] {
			t.Errorf("DefaultExpand(top)[%d] = %s, want %s", i, expand[i], want[i])
		}
	}
}

func TestParentOfTopIsEmpty(t *testing.T) {
	tree := parallelWithJointTree()
	if tree.Parent("top") != "" {
		t.Errorf("Parent(top) = %s, want empty", tree.Parent("top"))
	}
	if tree.Parent("x1") != "r1" {
		t.Errorf("Parent(x1) = %s, want r1", tree.Parent("x1"))
	}
}
