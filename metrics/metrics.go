// Package metrics wires a *statechart.Hooks to Prometheus counters,
// grounded on aretw0-trellis's structured-logging example
// (examples/structured-logging/main.go): a CounterVec per lifecycle
// event, labeled by chart name and engine instance id so a host
// running many engines can break metrics down per instance without a
// separate registry each.
package metrics

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/internal/ir"
)

// Collector owns the Prometheus vectors backing one or more engines'
// Hooks. Create one per process and register it once; call Hooks for
// every engine instance sharing that registration.
type Collector struct {
	eventsProcessed    *prometheus.CounterVec
	eventsUnprocessed  *prometheus.CounterVec
	transitionsPlanned *prometheus.CounterVec
	transitionErrors   *prometheus.CounterVec
	repliesUnhandled   *prometheus.CounterVec
	notInitiated       *prometheus.CounterVec
	lifecycle          *prometheus.CounterVec
}

// NewCollector builds the vectors. namespace/subsystem follow
// Prometheus naming convention (e.g. namespace="myapp",
// subsystem="statechart") and may both be empty.
func NewCollector(namespace, subsystem string) *Collector {
	labels := []string{"chart", "instance"}
	c := &Collector{
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "events_finished_total", Help: "Events that completed the pipeline, handled or not.",
		}, append(labels, "event")),
		eventsUnprocessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "events_unprocessed_total", Help: "Events no active node's handlers processed.",
		}, append(labels, "event")),
		transitionsPlanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "transitions_planned_total", Help: "Transition rounds that produced a plan.",
		}, labels),
		transitionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "transition_errors_total", Help: "Transition rounds rejected by the planner.",
		}, labels),
		repliesUnhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "replies_unhandled_total", Help: "Replies with no registered handler for their type.",
		}, append(labels, "reply")),
		notInitiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "process_before_initiate_total", Help: "Process or Terminate calls before Initiate.",
		}, labels),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "lifecycle_total", Help: "Initiate/Terminate calls, labeled by phase.",
		}, append(labels, "phase")),
	}
	return c
}

// MustRegister registers every vector against reg.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		c.eventsProcessed, c.eventsUnprocessed, c.transitionsPlanned,
		c.transitionErrors, c.repliesUnhandled, c.notInitiated, c.lifecycle,
	)
}

// Hooks builds a *statechart.Hooks that records against c, labeled
// with chart and id. Pass it via statechart.WithHooks; combine with
// another Hooks value's fields first if the host also wants
// diagnostics.Hooks-style logging (metrics and logging are separate
// concerns here, unlike original_source/psc.py's single log sink).
func (c *Collector) Hooks(chart string, id uuid.UUID) *statechart.Hooks {
	inst := id.String()
	return &statechart.Hooks{
		ReportUnprocessedEvent: func(e ir.Event) {
			c.eventsUnprocessed.WithLabelValues(chart, inst, string(e.Type)).Inc()
		},
		ReportUnprocessedReply: func(r ir.Reply) {
			c.repliesUnhandled.WithLabelValues(chart, inst, string(r.Type)).Inc()
		},
		ReportTransitionError: func(ir.NodeID) {
			c.transitionErrors.WithLabelValues(chart, inst).Inc()
		},
		ReportNotInitiated: func(ir.Event) {
			c.notInitiated.WithLabelValues(chart, inst).Inc()
		},
		ReportTransitions: func([]ir.NodeID) {
			c.transitionsPlanned.WithLabelValues(chart, inst).Inc()
		},
		ReportEventFinished: func(e ir.Event) {
			c.eventsProcessed.WithLabelValues(chart, inst, string(e.Type)).Inc()
		},
		ReportInitiated: func() {
			c.lifecycle.WithLabelValues(chart, inst, "initiated").Inc()
		},
		ReportTerminated: func() {
			c.lifecycle.WithLabelValues(chart, inst, "terminated").Inc()
		},
	}
}
