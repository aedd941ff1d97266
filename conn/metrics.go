package conn

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectionState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "airport_connection_state",
		Help: "State of the current connection attempt (0 idle, 1 connecting, 2 connected, 3 disconnected)",
	})
	tunnelOutputBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airport_tunnel_output_bytes",
		Help: "Counter metric for bytes read from the output of the tunnel process",
	})
	spawnFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airport_spawn_failures",
		Help: "How often the tunnel binary could not be started",
	})
	routingActivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "airport_routing_activations",
		Help: "Runs of the routing script by result",
	}, []string{"result"})
	tamperingEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "airport_tampering_events",
		Help: "Direct endpoints from the tunnel output that were rejected",
	})
)

// MustRegisterMetrics registers the connector metrics with reg.
func MustRegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(connectionState)
	reg.MustRegister(tunnelOutputBytes)
	reg.MustRegister(spawnFailures)
	reg.MustRegister(routingActivations)
	reg.MustRegister(tamperingEvents)
}
