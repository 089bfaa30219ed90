package statechart

import "github.com/gostatechart/statechart/internal/ir"

// replyBuffer collects replies emitted during one event's handle phase
// and holds them until the engine flushes them — between the exit and
// entry halves of a transition, or immediately if the event triggered
// no transition (spec.md §4.6, grounded on original_source/psc.py's
// `_reply`/`_reply_queue`).
type replyBuffer struct {
	replies []ir.Reply
}

func (b *replyBuffer) add(r ir.Reply) {
	b.replies = append(b.replies, r)
}

func (b *replyBuffer) empty() bool {
	return len(b.replies) == 0
}

// flush returns the buffered replies in emission order and clears the
// buffer.
func (b *replyBuffer) flush() []ir.Reply {
	if len(b.replies) == 0 {
		return nil
	}
	out := b.replies
	b.replies = nil
	return out
}
