package statechart

import "github.com/gostatechart/statechart/internal/ir"

// ReplyHandler receives one reply instance dispatched by reply type
// (spec.md §6).
type ReplyHandler func(r ir.Reply)

// replyRegistry holds zero or more reply handlers per reply type; a
// reply with no registered handler is reported via
// Hooks.ReportUnprocessedReply (spec.md §7, UnprocessedReply).
type replyRegistry struct {
	handlers map[ir.ReplyType][]ReplyHandler
}

func newReplyRegistry() *replyRegistry {
	return &replyRegistry{handlers: make(map[ir.ReplyType][]ReplyHandler)}
}

func (r *replyRegistry) on(t ir.ReplyType, h ReplyHandler) {
	r.handlers[t] = append(r.handlers[t], h)
}

func (r *replyRegistry) dispatch(reply ir.Reply, hooks *Hooks) {
	list := r.handlers[reply.Type]
	if len(list) == 0 {
		hooks.ReportUnprocessedReply(reply)
		return
	}
	for _, h := range list {
		h(reply)
	}
}
