package statechart

import "github.com/gostatechart/statechart/internal/ir"

// Hooks is the engine-to-host diagnostic and reply surface (spec.md
// §6). Every field is overrideable; the zero value is the documented
// default chain: the four specific-error hooks forward to ReportError,
// the four info hooks (ReportTransitions, ReportEventFinished,
// ReportInitiated, ReportTerminated) forward to ReportInfo, and both
// forward to Log,
// which is a no-op. Message factories are deferred (func() string)
// so a host that doesn't override Log never pays for formatting.
//
// SPEC_FULL.md adds ReportInitiated/ReportTerminated, absent from the
// source spec's hook list, to let a host distinguish the Initiate/
// Terminate lifecycle events from ordinary ReportEventFinished calls
// without inspecting the event payload.
type Hooks struct {
	Log func(msgFactory func() string)

	ReportError func(msgFactory func() string)
	ReportInfo  func(msgFactory func() string)

	ReportUnprocessedEvent func(event ir.Event)
	ReportUnprocessedReply func(reply ir.Reply)
	ReportTransitionError  func(node ir.NodeID)
	ReportNotInitiated     func(event ir.Event)
	ReportTransitions      func(nodes []ir.NodeID)
	ReportEventFinished    func(event ir.Event)
	ReportInitiated        func()
	ReportTerminated       func()
}

// defaultHooks returns the documented default chain with a no-op Log.
// Replies with no registered handler are reported by replyRegistry
// through ReportUnprocessedReply.
func defaultHooks() *Hooks {
	h := &Hooks{}
	h.Log = func(func() string) {}
	h.ReportError = func(f func() string) { h.Log(f) }
	h.ReportInfo = func(f func() string) { h.Log(f) }
	h.ReportUnprocessedEvent = func(e ir.Event) {
		h.ReportError(func() string { return "unprocessed event: " + string(e.Type) })
	}
	h.ReportUnprocessedReply = func(r ir.Reply) {
		h.ReportError(func() string { return "unprocessed reply: " + string(r.Type) })
	}
	h.ReportTransitionError = func(node ir.NodeID) {
		h.ReportError(func() string { return "transition error: " + string(node) })
	}
	h.ReportNotInitiated = func(e ir.Event) {
		h.ReportError(func() string { return "process called before initiate: " + string(e.Type) })
	}
	h.ReportTransitions = func(nodes []ir.NodeID) {
		h.ReportInfo(func() string { return "transitions planned" })
	}
	h.ReportEventFinished = func(e ir.Event) {
		h.ReportInfo(func() string { return "event finished: " + string(e.Type) })
	}
	h.ReportInitiated = func() { h.ReportInfo(func() string { return "initiated" }) }
	h.ReportTerminated = func() { h.ReportInfo(func() string { return "terminated" }) }
	return h
}

// merge fills every nil field of h with the corresponding field from
// defaults, so a host can override only the hooks it cares about.
func (h *Hooks) merge(defaults *Hooks) {
	// Point the default chain at h's own Log/ReportError/ReportInfo, so
	// the backfilled hooks forward to the host's overrides.
	if h.Log != nil {
		defaults.Log = h.Log
	}
	if h.ReportError != nil {
		defaults.ReportError = h.ReportError
	}
	if h.ReportInfo != nil {
		defaults.ReportInfo = h.ReportInfo
	}
	if h.Log == nil {
		h.Log = defaults.Log
	}
	if h.ReportError == nil {
		h.ReportError = defaults.ReportError
	}
	if h.ReportInfo == nil {
		h.ReportInfo = defaults.ReportInfo
	}
	if h.ReportUnprocessedEvent == nil {
		h.ReportUnprocessedEvent = defaults.ReportUnprocessedEvent
	}
	if h.ReportUnprocessedReply == nil {
		h.ReportUnprocessedReply = defaults.ReportUnprocessedReply
	}
	if h.ReportTransitionError == nil {
		h.ReportTransitionError = defaults.ReportTransitionError
	}
	if h.ReportNotInitiated == nil {
		h.ReportNotInitiated = defaults.ReportNotInitiated
	}
	if h.ReportTransitions == nil {
		h.ReportTransitions = defaults.ReportTransitions
	}
	if h.ReportEventFinished == nil {
		h.ReportEventFinished = defaults.ReportEventFinished
	}
	if h.ReportInitiated == nil {
		h.ReportInitiated = defaults.ReportInitiated
	}
	if h.ReportTerminated == nil {
		h.ReportTerminated = defaults.ReportTerminated
	}
}
