package statechart

import (
	"testing"

	"github.com/gostatechart/statechart/internal/ir"
)

func TestDefaultHooksFunnelErrorsThroughLog(t *testing.T) {
	var logged []string
	h := defaultHooks()
	h.Log = func(f func() string) { logged = append(logged, f()) }

	h.ReportUnprocessedEvent(ir.Event{Type: "E"})
	h.ReportTransitionError("X")
	h.ReportNotInitiated(ir.Event{Type: "E"})
	h.ReportUnprocessedReply(ir.Reply{Type: "R"})

	if len(logged) != 4 {
		t.Fatalf("logged = %v, want 4 entries", logged)
	}
}

func TestDefaultHooksFunnelInfoThroughLog(t *testing.T) {
	var logged []string
	h := defaultHooks()
	h.Log = func(f func() string) { logged = append(logged, f()) }

	h.ReportTransitions([]ir.NodeID{"a"})
	h.ReportEventFinished(ir.Event{Type: "E"})
	h.ReportInitiated()
	h.ReportTerminated()

	if len(logged) != 4 {
		t.Fatalf("logged = %v, want 4 entries", logged)
	}
}

func TestDefaultHooksLogIsNoOpByDefault(t *testing.T) {
	h := defaultHooks()
	h.ReportInitiated() // must not panic with no Log override
}

func TestHooksMergeFillsOnlyNilFields(t *testing.T) {
	called := false
	h := &Hooks{ReportInitiated: func() { called = true }}
	h.merge(defaultHooks())

	h.ReportInitiated()
	if !called {
		t.Error("custom ReportInitiated should survive merge")
	}
	if h.ReportTerminated == nil {
		t.Error("merge should backfill ReportTerminated from defaults")
	}
	// backfilled hooks must not panic when invoked.
	h.ReportTerminated()
	h.ReportEventFinished(ir.Event{Type: "E"})
}
