package ir

// Tree is the static, validated state tree. Build one with the root
// package's Build (see builder.go) and Validate it before use.
type Tree struct {
	Top   NodeID
	Nodes map[NodeID]*Node

	// declOrder lists every node in declaration order; used for
	// deterministic tie-breaks in exit/entry ordering and joint
	// recomputation (spec §4.2, §4.4 steps 7-8).
	declOrder []NodeID

	// guardIndex maps a guard node to every joint whose guard set
	// includes it, so recomputeJoints only has to look at joints that
	// could plausibly have changed (spec §9).
	guardIndex map[NodeID][]NodeID
}

// NewTree creates an empty tree rooted at top. Nodes are added with
// AddNode before Validate and Finalize are called.
func NewTree(top NodeID) *Tree {
	return &Tree{
		Top:        top,
		Nodes:      make(map[NodeID]*Node),
		guardIndex: make(map[NodeID][]NodeID),
	}
}

// AddNode registers a node, assigning it the next declaration index.
func (t *Tree) AddNode(n *Node) {
	n.declIndex = len(t.declOrder)
	t.declOrder = append(t.declOrder, n.ID)
	t.Nodes[n.ID] = n
}

// Node looks up a node by id, or nil if absent.
func (t *Tree) Node(id NodeID) *Node { return t.Nodes[id] }

// DeclOrder returns every node id in declaration order.
func (t *Tree) DeclOrder() []NodeID { return t.declOrder }

// Finalize builds the guard index. Call once after all nodes are added,
// before Validate.
func (t *Tree) Finalize() {
	t.guardIndex = make(map[NodeID][]NodeID)
	for _, id := range t.declOrder {
		n := t.Nodes[id]
		if !n.IsJoint() {
			continue
		}
		for _, g := range n.Guards {
			t.guardIndex[g] = append(t.guardIndex[g], n.ID)
		}
	}
}

// JointsGuardedBy returns the joints whose guard set includes guard.
func (t *Tree) JointsGuardedBy(guard NodeID) []NodeID { return t.guardIndex[guard] }

// Joints returns every joint in declaration order.
func (t *Tree) Joints() []NodeID {
	var out []NodeID
	for _, id := range t.declOrder {
		if t.Nodes[id].IsJoint() {
			out = append(out, id)
		}
	}
	return out
}

// Parent returns the parent of id, or "" for the top node.
func (t *Tree) Parent(id NodeID) NodeID {
	n := t.Nodes[id]
	if n == nil {
		return ""
	}
	return n.Parent
}

// Ancestors returns every ancestor of id, from immediate parent to the
// top node (inclusive).
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	cur := t.Parent(id)
	for cur != "" {
		out = append(out, cur)
		cur = t.Parent(cur)
	}
	return out
}

// Path returns the root-to-node path, inclusive of both ends.
func (t *Tree) Path(id NodeID) []NodeID {
	anc := t.Ancestors(id)
	path := make([]NodeID, len(anc)+1)
	for i, a := range anc {
		path[len(anc)-1-i] = a
	}
	path[0] = t.Top
	path[len(path)-1] = id
	return path
}

// IsAncestor reports whether ancestor is a (non-strict is false: strict)
// ancestor of id.
func (t *Tree) IsAncestor(ancestor, id NodeID) bool {
	for _, a := range t.Ancestors(id) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// LCA finds the lowest common ancestor of a and b (which may itself be
// a or b when one is an ancestor of the other).
func (t *Tree) LCA(a, b NodeID) NodeID {
	pathA := t.Path(a)
	pathB := t.Path(b)
	var lca NodeID
	for i := 0; i < len(pathA) && i < len(pathB); i++ {
		if pathA[i] != pathB[i] {
			break
		}
		lca = pathA[i]
	}
	return lca
}

// DefaultExpand walks down from id following each composite's initial
// child and each parallel's full region set, returning every node that
// must be active for id's subtree to be in its default configuration
// (id itself included). Joint children of a visited parallel are not
// included — joint activation is derived, never directly entered.
func (t *Tree) DefaultExpand(id NodeID) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(cur NodeID) {
		out = append(out, cur)
		n := t.Nodes[cur]
		if n == nil {
			return
		}
		switch n.Kind {
		case KindComposite:
			if n.Initial != "" {
				walk(n.Initial)
			}
		case KindParallel:
			for _, region := range n.Children {
				walk(region)
			}
		}
	}
	walk(id)
	return out
}

// DeclIndex returns the declaration-order index of id, used for
// deterministic tie-breaks. Unknown ids sort last.
func (t *Tree) DeclIndex(id NodeID) int {
	if n := t.Nodes[id]; n != nil {
		return n.declIndex
	}
	return len(t.declOrder)
}
