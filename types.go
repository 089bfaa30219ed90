// Package statechart implements the runtime core of a hierarchical
// state chart engine with parallel regions and joint states: given a
// declared state tree and a stream of events, it drives the tree's
// active configuration, dispatches handlers, and buffers replies for
// the host to react to — decoupling state-machine logic from
// side-effecting application code.
package statechart

import "github.com/gostatechart/statechart/internal/ir"

// Re-exported so callers never need to import internal/ir directly.
type (
	NodeKind       = ir.NodeKind
	NodeID         = ir.NodeID
	EventType      = ir.EventType
	ReplyType      = ir.ReplyType
	Event          = ir.Event
	Reply          = ir.Reply
	TypedHandler   = ir.TypedHandler
	GenericHandler = ir.GenericHandler
	ConfigError    = ir.ConfigError
	ConfigIssue    = ir.ConfigIssue
)

const (
	KindSimple    = ir.KindSimple
	KindComposite = ir.KindComposite
	KindParallel  = ir.KindParallel
	KindJoint     = ir.KindJoint
)

// DispatchContext is passed to every handler. It exposes the triggering
// event and lets the handler request a transit or emit a reply without
// the engine's internals leaking into handler signatures.
//
// Transit is only valid during the handle phase (§6): calling it from
// an enter or exit handler is a TransitionError. Reply is valid in any
// phase.
type DispatchContext = ir.DispatchContext
