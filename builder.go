package statechart

import "github.com/gostatechart/statechart/internal/ir"

// NodeSpec is a declarative node in the fluent tree-construction DSL,
// generalizing felixgeelhaar-statekit's StateBuilder (OnEntry/OnExit
// chaining) from a single atomic/compound/final state kind to this
// package's four node kinds. Build a tree by nesting Simple/Composite/
// Parallel calls and decorating the result with On*, then call Build.
type NodeSpec struct {
	id       ir.NodeID
	kind     ir.NodeKind
	children []*NodeSpec
	initial  ir.NodeID
	joints   []*JointSpec

	enterTyped   map[ir.EventType][]ir.TypedHandler
	enterGeneric []ir.GenericHandler
	exitTyped    map[ir.EventType][]ir.TypedHandler
	exitGeneric  []ir.GenericHandler
	handleTyped  map[ir.EventType][]ir.TypedHandler
}

// JointSpec is a declarative joint pseudo-node: its guards reference
// other NodeSpecs by id, resolved against the whole tree at Build time.
type JointSpec struct {
	id     ir.NodeID
	guards []ir.NodeID

	enterTyped   map[ir.EventType][]ir.TypedHandler
	enterGeneric []ir.GenericHandler
	exitTyped    map[ir.EventType][]ir.TypedHandler
	exitGeneric  []ir.GenericHandler
	handleTyped  map[ir.EventType][]ir.TypedHandler
}

func newSpec(id ir.NodeID, kind ir.NodeKind) *NodeSpec {
	return &NodeSpec{
		id:          id,
		kind:        kind,
		enterTyped:  make(map[ir.EventType][]ir.TypedHandler),
		exitTyped:   make(map[ir.EventType][]ir.TypedHandler),
		handleTyped: make(map[ir.EventType][]ir.TypedHandler),
	}
}

// Simple declares a leaf node.
func Simple(id ir.NodeID) *NodeSpec { return newSpec(id, ir.KindSimple) }

// Composite declares a node with an ordered list of children, the
// first of which is the default-entry initial child. Use WithInitial
// to choose a different one.
func Composite(id ir.NodeID, children ...*NodeSpec) *NodeSpec {
	n := newSpec(id, ir.KindComposite)
	n.children = children
	if len(children) > 0 {
		n.initial = children[0].id
	}
	return n
}

// Parallel declares a node whose region children are all active
// together. Attach joint children with WithJoints.
func Parallel(id ir.NodeID, regions ...*NodeSpec) *NodeSpec {
	n := newSpec(id, ir.KindParallel)
	n.children = regions
	return n
}

// Joint declares a pseudo-node active iff every guard id is active. It
// is attached to a parallel with Parallel(...).WithJoints(...).
func Joint(id ir.NodeID, guards ...ir.NodeID) *JointSpec {
	return &JointSpec{
		id:          id,
		guards:      guards,
		enterTyped:  make(map[ir.EventType][]ir.TypedHandler),
		exitTyped:   make(map[ir.EventType][]ir.TypedHandler),
		handleTyped: make(map[ir.EventType][]ir.TypedHandler),
	}
}

// WithInitial overrides a composite's default (first-child) initial
// child.
func (n *NodeSpec) WithInitial(id ir.NodeID) *NodeSpec {
	n.initial = id
	return n
}

// WithJoints attaches joint children to a parallel node.
func (n *NodeSpec) WithJoints(joints ...*JointSpec) *NodeSpec {
	n.joints = append(n.joints, joints...)
	return n
}

// OnEnter registers a typed enter handler.
func (n *NodeSpec) OnEnter(t ir.EventType, h ir.TypedHandler) *NodeSpec {
	n.enterTyped[t] = append(n.enterTyped[t], h)
	return n
}

// OnEnterAny registers a generic enter handler, run only when there
// were no typed handlers for the triggering event type, or all of them
// refused.
func (n *NodeSpec) OnEnterAny(h ir.GenericHandler) *NodeSpec {
	n.enterGeneric = append(n.enterGeneric, h)
	return n
}

// OnExit registers a typed exit handler.
func (n *NodeSpec) OnExit(t ir.EventType, h ir.TypedHandler) *NodeSpec {
	n.exitTyped[t] = append(n.exitTyped[t], h)
	return n
}

// OnExitAny registers a generic exit handler.
func (n *NodeSpec) OnExitAny(h ir.GenericHandler) *NodeSpec {
	n.exitGeneric = append(n.exitGeneric, h)
	return n
}

// OnHandle registers a typed handle handler. There is no generic
// variant for the handle phase (spec.md §4.1).
func (n *NodeSpec) OnHandle(t ir.EventType, h ir.TypedHandler) *NodeSpec {
	n.handleTyped[t] = append(n.handleTyped[t], h)
	return n
}

func (j *JointSpec) OnEnter(t ir.EventType, h ir.TypedHandler) *JointSpec {
	j.enterTyped[t] = append(j.enterTyped[t], h)
	return j
}

func (j *JointSpec) OnEnterAny(h ir.GenericHandler) *JointSpec {
	j.enterGeneric = append(j.enterGeneric, h)
	return j
}

func (j *JointSpec) OnExit(t ir.EventType, h ir.TypedHandler) *JointSpec {
	j.exitTyped[t] = append(j.exitTyped[t], h)
	return j
}

func (j *JointSpec) OnExitAny(h ir.GenericHandler) *JointSpec {
	j.exitGeneric = append(j.exitGeneric, h)
	return j
}

func (j *JointSpec) OnHandle(t ir.EventType, h ir.TypedHandler) *JointSpec {
	j.handleTyped[t] = append(j.handleTyped[t], h)
	return j
}

// Build walks top and its descendants into a validated, finalized
// *ir.Tree ready for NewEngine. It returns *ConfigError if the
// resulting tree violates any invariant of spec.md §3.
func Build(top *NodeSpec) (*ir.Tree, error) {
	tree := ir.NewTree(top.id)
	addSpec(tree, top, "")
	tree.Finalize()
	if err := ir.Validate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func addSpec(tree *ir.Tree, spec *NodeSpec, parent ir.NodeID) {
	node := newIRNode(spec.id, spec.kind, parent, spec.enterTyped, spec.enterGeneric, spec.exitTyped, spec.exitGeneric, spec.handleTyped)
	switch spec.kind {
	case ir.KindComposite:
		node.Initial = spec.initial
		for _, c := range spec.children {
			node.Children = append(node.Children, c.id)
		}
	case ir.KindParallel:
		for _, c := range spec.children {
			node.Children = append(node.Children, c.id)
		}
		for _, j := range spec.joints {
			node.Joints = append(node.Joints, j.id)
		}
	}
	tree.AddNode(node)

	for _, c := range spec.children {
		addSpec(tree, c, spec.id)
	}
	for _, j := range spec.joints {
		jointNode := newIRNode(j.id, ir.KindJoint, "", j.enterTyped, j.enterGeneric, j.exitTyped, j.exitGeneric, j.handleTyped)
		jointNode.Guards = j.guards
		tree.AddNode(jointNode)
	}
}

// newIRNode constructs an *ir.Node with its handler table pre-filled.
// There is no exported ir constructor for this (newNode is
// package-private to internal/ir), so the root package assembles the
// struct directly — it already re-exports every field type it touches.
func newIRNode(id ir.NodeID, kind ir.NodeKind, parent ir.NodeID,
	enterTyped map[ir.EventType][]ir.TypedHandler, enterGeneric []ir.GenericHandler,
	exitTyped map[ir.EventType][]ir.TypedHandler, exitGeneric []ir.GenericHandler,
	handleTyped map[ir.EventType][]ir.TypedHandler) *ir.Node {
	return &ir.Node{
		ID:     id,
		Kind:   kind,
		Parent: parent,
		Handlers: &ir.HandlerTable{
			EnterTyped:   enterTyped,
			EnterGeneric: enterGeneric,
			ExitTyped:    exitTyped,
			ExitGeneric:  exitGeneric,
			HandleTyped:  handleTyped,
		},
	}
}
