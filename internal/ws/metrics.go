package ws

import "expvar"

var (
	metricConnectionsTotal  = expvar.NewInt("ws_connections_total")
	metricConnectionsActive = expvar.NewInt("ws_connections_active")
	metricMessagesTotal     = expvar.NewInt("ws_messages_total")
	metricMessagesDropped   = expvar.NewInt("ws_messages_dropped_total")
	metricEventsBroadcast   = expvar.NewInt("ws_events_broadcast_total")
)
