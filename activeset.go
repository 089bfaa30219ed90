package statechart

import (
	"sort"

	"github.com/gostatechart/statechart/internal/ir"
)

// ActiveSet is the mutable configuration: which nodes, and which
// joints, are currently active (spec.md §3, §4.2).
type ActiveSet struct {
	tree         *ir.Tree
	active       map[ir.NodeID]bool
	activeJoints map[ir.NodeID]bool
}

func newActiveSet(tree *ir.Tree) *ActiveSet {
	return &ActiveSet{
		tree:         tree,
		active:       make(map[ir.NodeID]bool),
		activeJoints: make(map[ir.NodeID]bool),
	}
}

// IsActive reports whether node is in the active configuration.
func (a *ActiveSet) IsActive(node ir.NodeID) bool { return a.active[node] }

// IsJointActive reports whether joint is currently active.
func (a *ActiveSet) IsJointActive(joint ir.NodeID) bool { return a.activeJoints[joint] }

// Active returns a snapshot of every active node id, in declaration
// order.
func (a *ActiveSet) Active() []ir.NodeID {
	var out []ir.NodeID
	for _, id := range a.tree.DeclOrder() {
		if a.active[id] {
			out = append(out, id)
		}
	}
	return out
}

// activate and deactivate are raw primitives used only by the planner
// while executing a plan (spec.md §4.2): they never appear in host-
// facing API.
func (a *ActiveSet) activate(node ir.NodeID)   { a.active[node] = true }
func (a *ActiveSet) deactivate(node ir.NodeID) { delete(a.active, node) }

func (a *ActiveSet) clear() {
	a.active = make(map[ir.NodeID]bool)
	a.activeJoints = make(map[ir.NodeID]bool)
}

// recomputeJoints compares { j : guards(j) ⊆ active } against the
// tracked active joints and returns the newly-inactive joints (reverse
// declaration order) and the newly-active joints (forward declaration
// order), per spec.md §4.2's ordering rule. candidates restricts the
// check to joints that could plausibly have changed — typically the
// joints guarded by the nodes that just changed — but when nil every
// joint is checked.
func (a *ActiveSet) recomputeJoints(candidates []ir.NodeID) (newlyActive, newlyInactive []ir.NodeID) {
	check := candidates
	if check == nil {
		check = a.tree.Joints()
	} else {
		check = dedupeJoints(check)
	}

	for _, j := range check {
		node := a.tree.Node(j)
		if node == nil || !node.IsJoint() {
			continue
		}
		shouldBeActive := allGuardsActive(a, node.Guards)
		was := a.activeJoints[j]
		switch {
		case shouldBeActive && !was:
			newlyActive = append(newlyActive, j)
		case !shouldBeActive && was:
			newlyInactive = append(newlyInactive, j)
		}
	}

	sort.Slice(newlyInactive, func(i, k int) bool {
		return a.tree.DeclIndex(newlyInactive[i]) > a.tree.DeclIndex(newlyInactive[k])
	})
	sort.Slice(newlyActive, func(i, k int) bool {
		return a.tree.DeclIndex(newlyActive[i]) < a.tree.DeclIndex(newlyActive[k])
	})

	for _, j := range newlyInactive {
		delete(a.activeJoints, j)
	}
	for _, j := range newlyActive {
		a.activeJoints[j] = true
	}
	return newlyActive, newlyInactive
}

func allGuardsActive(a *ActiveSet, guards []ir.NodeID) bool {
	for _, g := range guards {
		if !a.active[g] {
			return false
		}
	}
	return true
}

// jointsGuardedByAny returns the deduplicated union of JointsGuardedBy
// for every node in changed.
func jointsGuardedByAny(tree *ir.Tree, changed []ir.NodeID) []ir.NodeID {
	var out []ir.NodeID
	seen := make(map[ir.NodeID]bool)
	for _, c := range changed {
		for _, j := range tree.JointsGuardedBy(c) {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	return out
}

func dedupeJoints(in []ir.NodeID) []ir.NodeID {
	seen := make(map[ir.NodeID]bool, len(in))
	var out []ir.NodeID
	for _, j := range in {
		if !seen[j] {
			seen[j] = true
			out = append(out, j)
		}
	}
	return out
}

// String renders the active configuration the way original_source's
// psc.py renders a state ("Top.Child" for composite, "Top[r1, r2]" for
// parallel/joint regions) — used by diagnostics and tests.
func (a *ActiveSet) String() string {
	var b []byte
	b = a.writeNode(b, a.tree.Top)
	return string(b)
}

func (a *ActiveSet) writeNode(b []byte, id ir.NodeID) []byte {
	if !a.active[id] {
		return b
	}
	b = append(b, id...)
	node := a.tree.Node(id)
	if node == nil {
		return b
	}
	switch node.Kind {
	case ir.KindComposite:
		for _, c := range node.Children {
			if a.active[c] {
				b = append(b, '.')
				b = a.writeNode(b, c)
			}
		}
	case ir.KindParallel:
		first := true
		for _, c := range node.Children {
			if !a.active[c] {
				continue
			}
			if first {
				b = append(b, '[')
				first = false
			} else {
				b = append(b, ',', ' ')
			}
			b = a.writeNode(b, c)
		}
		for _, j := range node.Joints {
			if !a.activeJoints[j] {
				continue
			}
			if first {
				b = append(b, '[')
				first = false
			} else {
				b = append(b, ',', ' ')
			}
			b = append(b, j...)
		}
		if !first {
			b = append(b, ']')
		}
	}
	return b
}
