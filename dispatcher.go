package statechart

import "github.com/gostatechart/statechart/internal/ir"

// phase identifies which of the three handler tables is being run.
type phase int

const (
	phaseEnter phase = iota
	phaseExit
	phaseHandle
)

// runEnterExit implements spec.md §4.3 steps 1-4 for the enter and exit
// phases: typed handlers run first (exact match on the event type);
// the generic fallback runs only if there were no typed handlers, or
// every one of them refused.
func runEnterExit(ctx ir.DispatchContext, node *ir.Node, ph phase, event ir.Event) {
	if node.Handlers == nil {
		return
	}
	var typed map[ir.EventType][]ir.TypedHandler
	var generic []ir.GenericHandler
	if ph == phaseEnter {
		typed = node.Handlers.EnterTyped
		generic = node.Handlers.EnterGeneric
	} else {
		typed = node.Handlers.ExitTyped
		generic = node.Handlers.ExitGeneric
	}

	list := typed[event.Type]
	anyHandled := false
	for _, h := range list {
		if h(ctx, event) {
			anyHandled = true
		}
	}
	if len(list) == 0 || !anyHandled {
		for _, h := range generic {
			h(ctx)
		}
	}
}

// runOwnHandle runs node's own typed handle handlers (no generic
// variant exists for handle, per spec.md §4.1) and reports whether the
// node handled the event on its own: non-empty T and at least one
// handler did not refuse.
func runOwnHandle(ctx ir.DispatchContext, node *ir.Node, event ir.Event) bool {
	if node.Handlers == nil {
		return false
	}
	list := node.Handlers.HandleTyped[event.Type]
	if len(list) == 0 {
		return false
	}
	handled := false
	for _, h := range list {
		if h(ctx, event) {
			handled = true
		}
	}
	return handled
}

// dispatchHandle implements the handle-phase propagation rule of
// spec.md §4.3: descend from the top active node, recursing into
// active children first; a node's own typed handlers run only if no
// descendant (or, for a parallel, no region/joint) handled the event.
func dispatchHandle(ctx ir.DispatchContext, active *ActiveSet, tree *ir.Tree, event ir.Event) bool {
	return handleNode(ctx, active, tree, tree.Top, event)
}

func handleNode(ctx ir.DispatchContext, active *ActiveSet, tree *ir.Tree, id ir.NodeID, event ir.Event) bool {
	node := tree.Node(id)
	if node == nil {
		return false
	}

	childrenHandled := false
	switch node.Kind {
	case ir.KindComposite:
		for _, c := range node.Children {
			if active.IsActive(c) {
				childrenHandled = handleNode(ctx, active, tree, c, event)
				break
			}
		}
	case ir.KindParallel:
		for _, c := range node.Children {
			if active.IsActive(c) && handleNode(ctx, active, tree, c, event) {
				childrenHandled = true
			}
		}
		for _, j := range node.Joints {
			if active.IsJointActive(j) {
				jointNode := tree.Node(j)
				if jointNode != nil && runOwnHandle(ctx, jointNode, event) {
					childrenHandled = true
				}
			}
		}
	}

	if childrenHandled {
		return true
	}
	return runOwnHandle(ctx, node, event)
}
