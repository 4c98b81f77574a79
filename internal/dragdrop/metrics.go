package dragdrop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reqtree"

// Metrics counts engine outcomes.
type Metrics struct {
	CommandsDispatched *prometheus.CounterVec
	CommandsFailed     *prometheus.CounterVec
	Rollbacks          prometheus.Counter
	DropsNoOp          *prometheus.CounterVec
}

// NewMetrics registers the engine metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CommandsDispatched: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_dispatched_total",
				Help:      "Total number of tree commands applied optimistically",
			},
			[]string{"kind"},
		),
		CommandsFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_failed_total",
				Help:      "Total number of tree commands rejected by the remote",
			},
			[]string{"kind"},
		),
		Rollbacks: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rollbacks_total",
				Help:      "Total number of optimistic updates reverted",
			},
		),
		DropsNoOp: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drops_noop_total",
				Help:      "Total number of drops that resolved to no command",
			},
			[]string{"reason"},
		),
	}
}
