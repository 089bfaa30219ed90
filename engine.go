package statechart

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gostatechart/statechart/internal/ir"
)

// EventInitiate and EventTerminate are the event types seen by typed
// enter/exit handlers during Initiate and Terminate respectively
// (spec.md §4.6: "typed enter/exit handlers keyed on type(e) see the
// triggering event").
const (
	EventInitiate  ir.EventType = "statechart.Initiate"
	EventTerminate ir.EventType = "statechart.Terminate"
)

// Engine is one self-contained instance of the runtime core: a
// validated tree, its active configuration, and the buffers and hooks
// that drive one event at a time (spec.md §3, §4.6, §5). No state is
// shared across Engine instances.
type Engine struct {
	id      uuid.UUID
	name    string
	tree    *ir.Tree
	active  *ActiveSet
	hooks   *Hooks
	replies *replyRegistry

	initiated  bool
	processing bool
	eventQueue []ir.Event

	pendingReplies  replyBuffer
	pendingTransits []ir.NodeID
	currentEvent    ir.Event
}

// EngineOption configures a new Engine.
type EngineOption func(*Engine)

// WithHooks overrides the default no-op diagnostic hooks.
func WithHooks(h *Hooks) EngineOption {
	return func(e *Engine) {
		if h != nil {
			h.merge(defaultHooks())
			e.hooks = h
		}
	}
}

// WithName attaches a name to this engine instance. The name is stored
// on the engine only: hook messages are not prefixed with it and no
// accessor returns it.
func WithName(name string) EngineOption {
	return func(e *Engine) { e.name = name }
}

// NewEngine validates tree and returns a ready-to-Initiate engine. The
// tree must already be finalized (Tree.Finalize) by its builder.
func NewEngine(tree *ir.Tree, opts ...EngineOption) (*Engine, error) {
	if cfgErr := ir.Validate(tree); cfgErr != nil {
		return nil, cfgErr
	}
	e := &Engine{
		id:      uuid.New(),
		tree:    tree,
		active:  newActiveSet(tree),
		hooks:   defaultHooks(),
		replies: newReplyRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ID returns this engine instance's correlation id, stamped once at
// construction — useful for diagnostics and metrics labeling when a
// host runs many engine instances concurrently.
func (e *Engine) ID() uuid.UUID { return e.id }

// OnReply registers h to receive every reply of type t (spec.md §6: "one
// or many handlers per type").
func (e *Engine) OnReply(t ir.ReplyType, h ReplyHandler) {
	e.replies.on(t, h)
}

// Active reports whether node is in the current active configuration.
func (e *Engine) Active(node ir.NodeID) bool { return e.active.IsActive(node) }

// ActiveJoint reports whether joint is currently active.
func (e *Engine) ActiveJoint(joint ir.NodeID) bool { return e.active.IsJointActive(joint) }

// String renders the current configuration, matching
// original_source/psc.py's _write_to rendering.
func (e *Engine) String() string { return e.active.String() }

// dispatchCtx is the concrete ir.DispatchContext passed to every
// handler. Transit is only honored during the handle phase; calling it
// from enter/exit escalates via ReportTransitionError (spec.md §6, §9
// open question).
type dispatchCtx struct {
	engine *Engine
	event  ir.Event
	ph     phase
}

func (c *dispatchCtx) Event() ir.Event { return c.event }

func (c *dispatchCtx) Reply(r ir.Reply) {
	if c.ph == phaseHandle {
		c.engine.pendingReplies.add(r)
	} else {
		c.engine.emitReply(r)
	}
}

func (c *dispatchCtx) Transit(target ir.NodeID) {
	if c.ph != phaseHandle {
		c.engine.hooks.ReportTransitionError(target)
		return
	}
	c.engine.pendingTransits = append(c.engine.pendingTransits, target)
}

func (e *Engine) emitReply(r ir.Reply) {
	e.replies.dispatch(r, e.hooks)
}

// Initiate activates the top node and runs its default-entry cascade
// (spec.md §4.6, §8 S1). Calling Initiate twice without an intervening
// Terminate reports an error and leaves the configuration unchanged
// (§9 open question).
func (e *Engine) Initiate() {
	if e.initiated {
		e.hooks.ReportError(func() string { return "initiate called while already initiated" })
		return
	}
	e.initiated = true
	e.runPipeline(ir.Event{Type: EventInitiate}, []ir.NodeID{e.tree.Top})
	e.hooks.ReportInitiated()
}

// Terminate deactivates every active node, exiting the full active
// subtree leaves-first with no entries (spec.md §4.6).
func (e *Engine) Terminate() {
	if !e.initiated {
		e.hooks.ReportNotInitiated(ir.Event{Type: EventTerminate})
		return
	}
	event := ir.Event{Type: EventTerminate}
	e.currentEvent = event
	ctx := &dispatchCtx{engine: e, event: event, ph: phaseExit}

	b := &planBuilder{tree: e.tree, active: e.active, mustBeActive: map[ir.NodeID]bool{}, outer: map[ir.NodeID]bool{}, nextActive: map[ir.NodeID]bool{}}
	b.exitSubtree(e.tree.Top)
	tp := &transitionPlan{Exits: b.exits}
	e.interposeJointExitsOnly(tp)

	for _, id := range tp.Exits {
		runEnterExit(ctx, e.tree.Node(id), phaseExit, event)
	}
	e.active.clear()

	e.initiated = false
	e.currentEvent = ir.Event{}
	e.hooks.ReportTerminated()
	e.hooks.ReportEventFinished(event)
}

// interposeJointExitsOnly handles the Terminate special case: every
// active joint becomes inactive, so every one of them is scheduled
// immediately before the first of its guards in the exit order (same
// rule as transitionPlan, without needing a full planner pass).
func (e *Engine) interposeJointExitsOnly(tp *transitionPlan) {
	for _, j := range e.tree.Joints() {
		if !e.active.IsJointActive(j) {
			continue
		}
		node := e.tree.Node(j)
		pos := firstIndexOfAny(tp.Exits, node.Guards)
		if pos >= 0 {
			tp.Exits = insertAt(tp.Exits, pos, j)
		}
	}
}

// Process injects event into the engine (spec.md §6 Engine API). If an
// event is already in flight, event is appended to the FIFO
// reentrancy queue and Process returns immediately (spec.md §4.6, §5).
func (e *Engine) Process(event ir.Event) {
	if !e.initiated {
		e.hooks.ReportNotInitiated(event)
		return
	}
	if e.processing {
		e.eventQueue = append(e.eventQueue, event)
		return
	}
	e.processing = true
	e.runPipeline(event, nil)
	for len(e.eventQueue) > 0 {
		next := e.eventQueue[0]
		e.eventQueue = e.eventQueue[1:]
		e.runPipeline(next, nil)
	}
	e.processing = false
}

// runPipeline implements spec.md §4.5 for one event: handle phase,
// decision, then a transition phase that may repeat if exit/entry
// handlers queue further transits (supplemented per
// original_source/psc.py's `while len(transit_queue) > 0`; in this
// model's stricter handler contract that loop runs at most once, since
// exit/entry handlers cannot call Transit, but the structure is kept
// faithful to the source). seedTransits, when non-nil, preloads
// pending_transits before the handle phase runs (used by Initiate to
// force the full default-entry cascade).
func (e *Engine) runPipeline(event ir.Event, seedTransits []ir.NodeID) {
	e.currentEvent = event
	e.pendingReplies.flush()
	e.pendingTransits = append([]ir.NodeID{}, seedTransits...)

	handleCtx := &dispatchCtx{engine: e, event: event, ph: phaseHandle}
	handled := dispatchHandle(handleCtx, e.active, e.tree, event)
	if !handled && len(seedTransits) == 0 {
		e.hooks.ReportUnprocessedEvent(event)
	}

	if len(e.pendingTransits) == 0 {
		for _, r := range e.pendingReplies.flush() {
			e.emitReply(r)
		}
		e.hooks.ReportEventFinished(event)
		e.currentEvent = ir.Event{}
		return
	}

	firstRound := true
	for len(e.pendingTransits) > 0 {
		requested := e.pendingTransits
		e.pendingTransits = nil
		e.runTransitionPhase(event, requested, firstRound)
		firstRound = false
	}

	e.hooks.ReportEventFinished(event)
	e.currentEvent = ir.Event{}
}

// runTransitionPhase executes one planning round (spec.md §4.5 step 3).
// flushReplies controls whether the pre-transition pending_replies are
// flushed between exits and entries: only the first round of an event
// has replies left to flush, since later rounds can only be reached
// from exit/entry handlers, which reply immediately rather than
// buffering.
func (e *Engine) runTransitionPhase(event ir.Event, requested []ir.NodeID, flushReplies bool) {
	tp, err := plan(e.tree, e.active, requested)
	if err != nil {
		var terr *transitionError
		node := ir.NodeID("")
		if errors.As(err, &terr) {
			node = terr.Node
		}
		e.hooks.ReportTransitionError(node)
		if flushReplies {
			for _, r := range e.pendingReplies.flush() {
				e.emitReply(r)
			}
		}
		return
	}

	e.hooks.ReportTransitions(append(append([]ir.NodeID{}, tp.Exits...), tp.Entries...))

	exitCtx := &dispatchCtx{engine: e, event: event, ph: phaseExit}
	for _, id := range tp.Exits {
		runEnterExit(exitCtx, e.tree.Node(id), phaseExit, event)
	}

	if flushReplies {
		for _, r := range e.pendingReplies.flush() {
			e.emitReply(r)
		}
	}

	entryCtx := &dispatchCtx{engine: e, event: event, ph: phaseEnter}
	for _, id := range tp.Entries {
		runEnterExit(entryCtx, e.tree.Node(id), phaseEnter, event)
	}

	e.applyNextActive(tp)
}

// applyNextActive commits a transitionPlan's next-active node set and
// recomputes joint activity from it (spec.md §4.2, §4.4 step 6).
func (e *Engine) applyNextActive(tp *transitionPlan) {
	for _, id := range tp.Exits {
		e.active.deactivate(id)
	}
	for id := range tp.NextActive {
		e.active.activate(id)
	}
	changed := append(append([]ir.NodeID{}, tp.Exits...), tp.Entries...)
	e.active.recomputeJoints(jointsGuardedByAny(e.tree, changed))
}
