package ir

import (
	"fmt"
	"strings"
)

// ConfigIssue is a single validation problem found in a declared tree.
type ConfigIssue struct {
	Code    string
	Message string
	Path    []string
}

func (c ConfigIssue) String() string {
	if len(c.Path) > 0 {
		return fmt.Sprintf("[%s] %s (at %s)", c.Code, c.Message, strings.Join(c.Path, "."))
	}
	return fmt.Sprintf("[%s] %s", c.Code, c.Message)
}

// ConfigError aggregates every issue found while validating a tree.
// Construction fails atomically: either the tree is usable, or a
// *ConfigError enumerates everything wrong with it.
type ConfigError struct {
	Issues []ConfigIssue
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid state tree"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid state tree: %d issues:\n", len(e.Issues))
	for i, issue := range e.Issues {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, issue.String())
	}
	return b.String()
}

func (e *ConfigError) add(code, message string, path ...string) {
	e.Issues = append(e.Issues, ConfigIssue{Code: code, Message: message, Path: path})
}

func (e *ConfigError) hasIssues() bool { return len(e.Issues) > 0 }

// Validation error codes.
const (
	ErrCodeNoTop               = "NO_TOP"
	ErrCodeDuplicateNode       = "DUPLICATE_NODE"
	ErrCodeCompositeNoChildren = "COMPOSITE_NO_CHILDREN"
	ErrCodeCompositeBadInitial = "COMPOSITE_BAD_INITIAL"
	ErrCodeUnknownChild        = "UNKNOWN_CHILD"
	ErrCodeBadParentLink       = "BAD_PARENT_LINK"
	ErrCodeJointNoGuardOwner   = "JOINT_NO_PARALLEL_OWNER"
	ErrCodeJointMultipleOwners = "JOINT_MULTIPLE_PARALLEL_OWNERS"
	ErrCodeUnknownGuard        = "UNKNOWN_GUARD"
	ErrCodeGuardCycle          = "GUARD_CYCLE"
	ErrCodeIncompatibleGuards  = "INCOMPATIBLE_GUARDS"
	ErrCodeCycle               = "CYCLE"
	ErrCodeUnreachable         = "UNREACHABLE"
)

// Validate checks invariants 1-4 of spec.md §3 and returns a non-nil
// *ConfigError if any are violated. It does not mutate t and does not
// rely on the guard index that t.Finalize() builds.
func Validate(t *Tree) *ConfigError {
	errs := &ConfigError{}

	if t.Top == "" || t.Nodes[t.Top] == nil {
		errs.add(ErrCodeNoTop, "tree has no valid top node")
		return errs
	}

	validateStructure(t, errs)
	validateReachability(t, errs)
	validateJointOwnership(t, errs)
	validateGuards(t, errs)

	if errs.hasIssues() {
		return errs
	}
	return nil
}

func validateStructure(t *Tree, errs *ConfigError) {
	for _, id := range t.declOrder {
		n := t.Nodes[id]
		path := []string{"nodes", string(id)}

		switch n.Kind {
		case KindComposite:
			if len(n.Children) == 0 {
				errs.add(ErrCodeCompositeNoChildren,
					fmt.Sprintf("composite %q must have at least one child", id), path...)
				break
			}
			foundInitial := false
			for _, c := range n.Children {
				child := t.Nodes[c]
				if child == nil {
					errs.add(ErrCodeUnknownChild,
						fmt.Sprintf("composite %q references unknown child %q", id, c), path...)
					continue
				}
				if child.Parent != id {
					errs.add(ErrCodeBadParentLink,
						fmt.Sprintf("child %q of composite %q has parent %q", c, id, child.Parent), path...)
				}
				if c == n.Initial {
					foundInitial = true
				}
			}
			if !foundInitial {
				errs.add(ErrCodeCompositeBadInitial,
					fmt.Sprintf("composite %q initial child %q is not one of its children", id, n.Initial), path...)
			}
		case KindParallel:
			for _, c := range n.Children {
				child := t.Nodes[c]
				if child == nil {
					errs.add(ErrCodeUnknownChild,
						fmt.Sprintf("parallel %q references unknown region %q", id, c), path...)
					continue
				}
				if child.Parent != id {
					errs.add(ErrCodeBadParentLink,
						fmt.Sprintf("region %q of parallel %q has parent %q", c, id, child.Parent), path...)
				}
			}
			for _, j := range n.Joints {
				joint := t.Nodes[j]
				if joint == nil || !joint.IsJoint() {
					errs.add(ErrCodeUnknownChild,
						fmt.Sprintf("parallel %q references unknown joint %q", id, j), path...)
				}
			}
		case KindJoint:
			if len(n.Guards) == 0 {
				errs.add(ErrCodeUnknownGuard,
					fmt.Sprintf("joint %q has no guards", id), path...)
			}
		}
	}
}

// validateReachability checks the tree is a single finite, acyclic,
// single-rooted structure reachable from Top (invariant 1).
func validateReachability(t *Tree, errs *ConfigError) {
	visited := make(map[NodeID]bool)
	var walk func(NodeID) bool
	walk = func(id NodeID) bool {
		if visited[id] {
			return false // revisit means a cycle
		}
		visited[id] = true
		n := t.Nodes[id]
		if n == nil {
			return true
		}
		for _, c := range n.Children {
			if t.Nodes[c] != nil {
				if !walk(c) {
					return false
				}
			}
		}
		return true
	}
	if !walk(t.Top) {
		errs.add(ErrCodeCycle, "state tree contains a cycle reachable from the top node")
	}
	for _, id := range t.declOrder {
		if t.Nodes[id].IsJoint() {
			continue // joints aren't tree-reachable by construction
		}
		if !visited[id] {
			errs.add(ErrCodeUnreachable, fmt.Sprintf("node %q is not reachable from the top node", id))
		}
	}
}

// validateJointOwnership checks invariant 4: every joint is a
// joint-child of exactly one parallel.
func validateJointOwnership(t *Tree, errs *ConfigError) {
	owners := make(map[NodeID]int)
	for _, id := range t.declOrder {
		n := t.Nodes[id]
		if n.IsParallel() {
			for _, j := range n.Joints {
				owners[j]++
			}
		}
	}
	for _, id := range t.declOrder {
		n := t.Nodes[id]
		if !n.IsJoint() {
			continue
		}
		switch owners[id] {
		case 0:
			errs.add(ErrCodeJointNoGuardOwner, fmt.Sprintf("joint %q is not attached to any parallel", id))
		case 1:
			// ok
		default:
			errs.add(ErrCodeJointMultipleOwners, fmt.Sprintf("joint %q is attached to %d parallels", id, owners[id]))
		}
	}
}

// validateGuards checks invariant 3: guards resolve, no joint is its
// own guard (transitively), and guards of one joint are simultaneously
// activatable.
func validateGuards(t *Tree, errs *ConfigError) {
	for _, id := range t.declOrder {
		n := t.Nodes[id]
		if !n.IsJoint() {
			continue
		}
		path := []string{"nodes", string(id)}
		for _, g := range n.Guards {
			if t.Nodes[g] == nil {
				errs.add(ErrCodeUnknownGuard, fmt.Sprintf("joint %q guard %q does not resolve", id, g), path...)
			}
		}
	}

	if cyc := findGuardCycle(t); cyc != "" {
		errs.add(ErrCodeGuardCycle, fmt.Sprintf("joint %q is transitively its own guard", cyc))
	}

	for _, id := range t.declOrder {
		n := t.Nodes[id]
		if !n.IsJoint() {
			continue
		}
		if !guardsCompatible(t, n.Guards) {
			errs.add(ErrCodeIncompatibleGuards,
				fmt.Sprintf("joint %q has guards that can never be simultaneously active", id),
				"nodes", string(id))
		}
	}
}

// findGuardCycle detects a joint that is (transitively) its own guard:
// a joint can only be reached as a guard if some other joint names it,
// and a guard resolving back to an ancestor joint is a cycle.
func findGuardCycle(t *Tree) NodeID {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[NodeID]int)
	var walk func(NodeID) bool
	walk = func(id NodeID) bool {
		n := t.Nodes[id]
		if n == nil || !n.IsJoint() {
			return false
		}
		switch state[id] {
		case visiting:
			return true
		case done:
			return false
		}
		state[id] = visiting
		for _, g := range n.Guards {
			if walk(g) {
				return true
			}
		}
		state[id] = done
		return false
	}
	for _, id := range t.declOrder {
		if t.Nodes[id].IsJoint() && state[id] == unvisited {
			if walk(id) {
				return id
			}
		}
	}
	return ""
}

// guardsCompatible reports whether every pair of guard nodes can be
// simultaneously active: their paths from the root must not diverge
// into different children of a shared composite ancestor.
func guardsCompatible(t *Tree, guards []NodeID) bool {
	for i := 0; i < len(guards); i++ {
		for j := i + 1; j < len(guards); j++ {
			if !pairCompatible(t, guards[i], guards[j]) {
				return false
			}
		}
	}
	return true
}

func pairCompatible(t *Tree, a, b NodeID) bool {
	if a == b {
		return true
	}
	lca := t.LCA(a, b)
	lcaNode := t.Nodes[lca]
	if lcaNode == nil {
		return true
	}
	if lcaNode.Kind != KindComposite {
		// Parallel or joint LCA: regions/guards under a parallel are
		// always simultaneously activatable.
		return true
	}
	pathA := t.Path(a)
	pathB := t.Path(b)
	// Find the child of lca each path goes through.
	childA, childB := divergentChild(pathA, lca), divergentChild(pathB, lca)
	return childA == childB
}

func divergentChild(path []NodeID, lca NodeID) NodeID {
	for i, id := range path {
		if id == lca {
			if i+1 < len(path) {
				return path[i+1]
			}
			return ""
		}
	}
	return ""
}
