package statechart

import "github.com/gostatechart/statechart/internal/ir"

// transitionPlan is the planner's output: an ordered exit sequence, the
// configuration to move to, and an ordered entry sequence (spec.md
// §4.4). Joint enter/exit are already interposed (§4.4 step 7-8,
// §4.5 step 3b/3e).
type transitionPlan struct {
	Exits      []ir.NodeID
	Entries    []ir.NodeID
	NextActive map[ir.NodeID]bool
}

// transitionError is returned when a batch of requested targets cannot
// collapse to one legal configuration (spec.md §4.4 step 2 / §7).
type transitionError struct {
	Node ir.NodeID
}

func (e *transitionError) Error() string {
	return "transition error: incompatible or unknown target " + string(e.Node)
}

// plan computes a transitionPlan for the given requested targets
// (pending_transits, accumulated during one event's handle phase — may
// include joint ids) against the tree's current active configuration.
func plan(tree *ir.Tree, active *ActiveSet, requested []ir.NodeID) (*transitionPlan, error) {
	p := &planner{tree: tree, active: active}
	return p.run(requested)
}

type planner struct {
	tree   *ir.Tree
	active *ActiveSet
}

func (p *planner) run(requested []ir.NodeID) (*transitionPlan, error) {
	rewritten, outer, err := p.rewriteJoints(requested)
	if err != nil {
		return nil, err
	}

	if err := p.checkCompatible(rewritten); err != nil {
		return nil, err
	}

	mustBeActive := make(map[ir.NodeID]bool)
	for _, r := range rewritten {
		for _, n := range p.tree.DefaultExpand(r) {
			mustBeActive[n] = true
		}
		for _, a := range p.tree.Ancestors(r) {
			mustBeActive[a] = true
		}
	}
	mustBeActive[p.tree.Top] = true

	b := &planBuilder{tree: p.tree, active: p.active, mustBeActive: mustBeActive, outer: outer, nextActive: make(map[ir.NodeID]bool)}
	b.process(p.tree.Top)

	tp := &transitionPlan{Exits: b.exits, Entries: b.entries, NextActive: b.nextActive}
	p.interposeJoints(tp)
	return tp, nil
}

// rewriteJoints expands every joint target in requested to its guard
// set (spec.md §4.4 step 1), recursively in case a guard is itself a
// joint, and computes the outer-transition set: per spec.md §4.4 step
// 5, the rule keys off whether the *literally requested* node (or, for
// a joint request, the joint itself) was already active — not whether
// a guard happens to already be active (planner_test.go's
// TestPlanJointTransitionOuterRuleKeysOffLiteralTarget exercises this).
func (p *planner) rewriteJoints(requested []ir.NodeID) (rewritten []ir.NodeID, outer map[ir.NodeID]bool, err error) {
	outer = make(map[ir.NodeID]bool)
	seen := make(map[ir.NodeID]bool)

	var expand func(id ir.NodeID, literalWasActive bool) error
	expand = func(id ir.NodeID, literalWasActive bool) error {
		node := p.tree.Node(id)
		if node == nil {
			return &transitionError{Node: id}
		}
		if node.IsJoint() {
			for _, g := range node.Guards {
				if err := expand(g, literalWasActive); err != nil {
					return err
				}
			}
			return nil
		}
		if !seen[id] {
			seen[id] = true
			rewritten = append(rewritten, id)
		}
		if literalWasActive {
			outer[id] = true
		}
		return nil
	}

	for _, r := range requested {
		node := p.tree.Node(r)
		if node == nil {
			return nil, nil, &transitionError{Node: r}
		}
		wasActive := false
		if node.IsJoint() {
			wasActive = p.active.IsJointActive(r)
		} else {
			wasActive = p.active.IsActive(r)
		}
		if err := expand(r, wasActive); err != nil {
			return nil, nil, err
		}
	}
	return rewritten, outer, nil
}

// checkCompatible implements spec.md §4.4 step 2: for every pair of
// requested targets, their paths to the lowest common ancestor must
// not diverge into different children of a composite.
func (p *planner) checkCompatible(rewritten []ir.NodeID) error {
	for i := 0; i < len(rewritten); i++ {
		for j := i + 1; j < len(rewritten); j++ {
			a, b := rewritten[i], rewritten[j]
			if a == b {
				continue
			}
			lca := p.tree.LCA(a, b)
			lcaNode := p.tree.Node(lca)
			if lcaNode == nil || lcaNode.Kind != ir.KindComposite {
				continue
			}
			childA := divergentChild(p.tree, a, lca)
			childB := divergentChild(p.tree, b, lca)
			if childA != childB {
				return &transitionError{Node: b}
			}
		}
	}
	return nil
}

func divergentChild(tree *ir.Tree, id, lca ir.NodeID) ir.NodeID {
	path := tree.Path(id)
	for i, n := range path {
		if n == lca {
			if i+1 < len(path) {
				return path[i+1]
			}
			return ""
		}
	}
	return ""
}

// interposeJoints schedules joint exits just before the first of their
// guards in the exit order, and joint entries just after the last of
// their guards in the entry order (spec.md §4.4 step 7-8, §4.5 step
// 3b/3e).
func (p *planner) interposeJoints(tp *transitionPlan) {
	changed := append(append([]ir.NodeID{}, tp.Exits...), tp.Entries...)
	candidates := jointsGuardedByAny(p.tree, changed)

	type insertion struct {
		joint ir.NodeID
		pos   int
	}

	var exitInsertions, entryInsertions []insertion
	for _, j := range candidates {
		node := p.tree.Node(j)
		if node == nil {
			continue
		}
		wasActive := p.active.IsJointActive(j)
		willBeActive := true
		for _, g := range node.Guards {
			if !tp.NextActive[g] {
				willBeActive = false
				break
			}
		}
		switch {
		case wasActive && !willBeActive:
			pos := firstIndexOfAny(tp.Exits, node.Guards)
			if pos >= 0 {
				exitInsertions = append(exitInsertions, insertion{j, pos})
			}
		case !wasActive && willBeActive:
			pos := lastIndexOfAny(tp.Entries, node.Guards)
			if pos >= 0 {
				entryInsertions = append(entryInsertions, insertion{j, pos + 1})
			}
		}
	}

	for i := len(exitInsertions) - 1; i >= 0; i-- {
		ins := exitInsertions[i]
		tp.Exits = insertAt(tp.Exits, ins.pos, ins.joint)
	}
	for i := len(entryInsertions) - 1; i >= 0; i-- {
		ins := entryInsertions[i]
		tp.Entries = insertAt(tp.Entries, ins.pos, ins.joint)
	}
}

func firstIndexOfAny(list []ir.NodeID, candidates []ir.NodeID) int {
	set := toSet(candidates)
	for i, n := range list {
		if set[n] {
			return i
		}
	}
	return -1
}

func lastIndexOfAny(list []ir.NodeID, candidates []ir.NodeID) int {
	set := toSet(candidates)
	for i := len(list) - 1; i >= 0; i-- {
		if set[list[i]] {
			return i
		}
	}
	return -1
}

func toSet(ids []ir.NodeID) map[ir.NodeID]bool {
	set := make(map[ir.NodeID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func insertAt(list []ir.NodeID, pos int, id ir.NodeID) []ir.NodeID {
	out := make([]ir.NodeID, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, id)
	out = append(out, list[pos:]...)
	return out
}

// planBuilder walks the tree from Top, assembling the exit/entry order
// and next-active set (spec.md §4.4 steps 3-8, minus joint
// interposition which happens afterward).
type planBuilder struct {
	tree         *ir.Tree
	active       *ActiveSet
	mustBeActive map[ir.NodeID]bool
	outer        map[ir.NodeID]bool
	nextActive   map[ir.NodeID]bool
	exits        []ir.NodeID
	entries      []ir.NodeID
}

func (b *planBuilder) process(id ir.NodeID) {
	node := b.tree.Node(id)
	if node == nil {
		return
	}
	wasActive := b.active.IsActive(id)
	isOuter := b.outer[id]

	if wasActive && !isOuter {
		b.nextActive[id] = true
		switch node.Kind {
		case ir.KindComposite:
			req := b.requiredChild(node)
			cur := b.currentActiveChild(node)
			switch {
			case req == "":
				if cur != "" {
					b.retain(cur)
				}
			case req == cur:
				b.process(req)
			default:
				if cur != "" {
					b.exitSubtree(cur)
				}
				b.enterFresh(req)
			}
		case ir.KindParallel:
			for _, region := range node.Children {
				if b.mustBeActive[region] {
					b.process(region)
				} else {
					b.retain(region)
				}
			}
		}
		return
	}

	if wasActive && isOuter {
		b.exitSubtree(id)
	}
	b.enterFresh(id)
}

func (b *planBuilder) requiredChild(node *ir.Node) ir.NodeID {
	for _, c := range node.Children {
		if b.mustBeActive[c] {
			return c
		}
	}
	return ""
}

func (b *planBuilder) currentActiveChild(node *ir.Node) ir.NodeID {
	for _, c := range node.Children {
		if b.active.IsActive(c) {
			return c
		}
	}
	return ""
}

// retain carries a currently-active subtree forward unchanged: no
// entry or exit fires (spec.md invariant 3 / testable property 3).
func (b *planBuilder) retain(id ir.NodeID) {
	b.nextActive[id] = true
	node := b.tree.Node(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case ir.KindComposite:
		if c := b.currentActiveChild(node); c != "" {
			b.retain(c)
		}
	case ir.KindParallel:
		for _, region := range node.Children {
			b.retain(region)
		}
	}
}

// exitSubtree appends id's currently-active subtree to the exit order,
// leaves-first (children before their parent), with sibling ties
// broken by reverse declaration order (spec.md §4.4 step 7).
func (b *planBuilder) exitSubtree(id ir.NodeID) {
	node := b.tree.Node(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case ir.KindComposite:
		if c := b.currentActiveChild(node); c != "" {
			b.exitSubtree(c)
		}
	case ir.KindParallel:
		for i := len(node.Children) - 1; i >= 0; i-- {
			region := node.Children[i]
			if b.active.IsActive(region) {
				b.exitSubtree(region)
			}
		}
	}
	b.exits = append(b.exits, id)
}

// enterFresh appends id's default-entry subtree to the entry order,
// parents-first, with ties broken by forward declaration order
// (spec.md §4.4 step 8).
func (b *planBuilder) enterFresh(id ir.NodeID) {
	b.entries = append(b.entries, id)
	b.nextActive[id] = true
	node := b.tree.Node(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case ir.KindComposite:
		child := b.requiredChild(node)
		if child == "" {
			child = node.Initial
		}
		if child != "" {
			b.enterFresh(child)
		}
	case ir.KindParallel:
		for _, region := range node.Children {
			b.enterFresh(region)
		}
	}
}
