package outbox

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	enqueueTotal  *prometheus.CounterVec
	dispatchTotal *prometheus.CounterVec
	deadTotal     *prometheus.CounterVec

	dispatchLatency *prometheus.HistogramVec

	pending     *prometheus.GaugeVec
	locked      *prometheus.GaugeVec
	relayLeader *prometheus.GaugeVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		enqueueTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "enqueued_total",
			Help:      "Messages written to an outbox table.",
		}, []string{"table", "topic"}),
		dispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "dispatched_total",
			Help:      "Delivery attempts by the relay, labelled with their result.",
		}, []string{"table", "topic", "result"}),
		deadTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "dead_lettered_total",
			Help:      "Messages that exhausted their attempt budget.",
		}, []string{"table", "topic"}),
		dispatchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent delivering one message, by result.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"table", "topic", "result"}),
		pending: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "pending",
			Help:      "Unpublished messages waiting in a table.",
		}, []string{"table"}),
		locked: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "locked",
			Help:      "Unpublished messages currently claimed by a relay batch.",
		}, []string{"table"}),
		relayLeader: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vantage",
			Subsystem: "outbox",
			Name:      "relay_leader",
			Help:      "1 when this process holds the relay lock for a table, else 0.",
		}, []string{"table"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
