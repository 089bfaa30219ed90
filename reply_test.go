package statechart

import (
	"testing"

	"github.com/gostatechart/statechart/internal/ir"
)

func TestReplyBufferFlushReturnsInOrderAndClears(t *testing.T) {
	var b replyBuffer
	if !b.empty() {
		t.Fatal("new buffer should be empty")
	}
	b.add(ir.Reply{Type: "R1"})
	b.add(ir.Reply{Type: "R2"})
	if b.empty() {
		t.Fatal("buffer with replies should not be empty")
	}

	out := b.flush()
	want := []ir.ReplyType{"R1", "R2"}
	if len(out) != len(want) {
		t.Fatalf("flush() = %v, want %d replies", out, len(want))
	}
	for i, r := range out {
		if r.Type != want[i] {
			t.Errorf("out[%d].Type = %s, want %s", i, r.Type, want[i])
		}
	}
	if !b.empty() {
		t.Error("flush should clear the buffer")
	}
}

func TestReplyBufferFlushOnEmptyReturnsNil(t *testing.T) {
	var b replyBuffer
	if out := b.flush(); out != nil {
		t.Errorf("flush() on empty buffer = %v, want nil", out)
	}
}

func TestReplyRegistryDispatchesToAllRegisteredHandlers(t *testing.T) {
	var got []string
	reg := newReplyRegistry()
	reg.on("R", func(r ir.Reply) { got = append(got, "first") })
	reg.on("R", func(r ir.Reply) { got = append(got, "second") })

	reg.dispatch(ir.Reply{Type: "R"}, defaultHooks())

	want := []string{"first", "second"}
	if len(got) != len(want) {
		t.Fatalf("got = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestReplyRegistryReportsUnprocessedWhenNoHandler(t *testing.T) {
	var reported bool
	hooks := defaultHooks()
	hooks.ReportUnprocessedReply = func(r ir.Reply) { reported = true }

	reg := newReplyRegistry()
	reg.dispatch(ir.Reply{Type: "Ghost"}, hooks)

	if !reported {
		t.Error("expected ReportUnprocessedReply to fire for an unregistered reply type")
	}
}
