package metrics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/internal/ir"
)

func buildTree(t *testing.T) *ir.Tree {
	t.Helper()
	tree := ir.NewTree("top")
	tree.AddNode(&ir.Node{ID: "top", Kind: ir.KindSimple})
	tree.Finalize()
	require.Nil(t, ir.Validate(tree))
	return tree
}

func TestCollectorHooksRecordLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", "statechart")
	c.MustRegister(reg)

	id := uuid.New()
	h := c.Hooks("mychart", id)

	tree := buildTree(t)
	e, err := statechart.NewEngine(tree, statechart.WithHooks(h))
	require.NoError(t, err)

	e.Initiate()
	require.Equal(t, float64(1), testutil.ToFloat64(c.lifecycle.WithLabelValues("mychart", id.String(), "initiated")))

	e.Process(ir.Event{Type: "noop"})
	require.Equal(t, float64(1), testutil.ToFloat64(c.eventsUnprocessed.WithLabelValues("mychart", id.String(), "noop")))

	e.Terminate()
	require.Equal(t, float64(1), testutil.ToFloat64(c.lifecycle.WithLabelValues("mychart", id.String(), "terminated")))
}

func TestCollectorHooksNotInitiated(t *testing.T) {
	c := NewCollector("", "")
	id := uuid.New()
	h := c.Hooks("chart2", id)

	tree := buildTree(t)
	e, err := statechart.NewEngine(tree, statechart.WithHooks(h))
	require.NoError(t, err)

	e.Process(ir.Event{Type: "x"})
	require.Equal(t, float64(1), testutil.ToFloat64(c.notInitiated.WithLabelValues("chart2", id.String())))
}
