package spectatorgateway

import "expvar"

var (
	metricSSEConnectionsTotal  = expvar.NewInt("spectator_sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("spectator_sse_connections_active")
	metricSSEEventsSent        = expvar.NewMap("spectator_sse_events_total")
)
