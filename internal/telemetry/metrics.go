// Package telemetry exposes the bridge's operational counters and
// the HTTP surface: Prometheus metrics, a health probe, and the
// entity snapshot for presentation layers that pull.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openashp/aerona3-bridge/internal/transport"
)

const namespace = "aerona3"

// Metrics groups every instrument the bridge records.
type Metrics struct {
	PollCycles prometheus.Counter
	BlockReads *prometheus.CounterVec
	Writes     *prometheus.CounterVec
	Reconnects prometheus.Counter

	// ConnectionState mirrors the transport state machine:
	// 0=disconnected, 1=connecting, 2=connected, 3=backoff.
	ConnectionState prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics builds and registers all instruments on a private
// registry, keeping the default global registry untouched.
func NewMetrics() *Metrics {
	m := &Metrics{
		PollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "cycles_total",
			Help:      "Completed poll cycles",
		}),
		BlockReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "block_reads_total",
			Help:      "Block read attempts by result",
		}, []string{"result"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "write",
			Name:      "requests_total",
			Help:      "Register write requests by result",
		}, []string{"result"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Times the TCP session was re-established",
		}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connection_state",
			Help:      "Connection state (0=disconnected, 1=connecting, 2=connected, 3=backoff)",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.PollCycles,
		m.BlockReads,
		m.Writes,
		m.Reconnects,
		m.ConnectionState,
	)
	return m
}

// Registry returns the backing registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ConnectionObserver returns an OnState hook that mirrors the state
// gauge and counts re-established sessions. The initial connect is
// not a reconnect. Transitions arrive serialized from the manager.
func (m *Metrics) ConnectionObserver() func(transport.State) {
	var wasConnected bool
	return func(s transport.State) {
		m.ConnectionState.Set(float64(s))
		if s == transport.Connected {
			if wasConnected {
				m.Reconnects.Inc()
			}
			wasConnected = true
		}
	}
}
