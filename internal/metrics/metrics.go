// Package metrics holds the Prometheus collectors for the client and the
// reference server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClientLinesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textchat_client_lines_sent_total",
			Help: "Number of command lines written by the client.",
		},
	)

	ClientLinesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textchat_client_lines_received_total",
			Help: "Number of lines read by the client listener loop.",
		},
	)

	ClientEventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textchat_client_events_dispatched_total",
			Help: "Number of decoded events delivered to listeners, by event type.",
		},
		[]string{"event"},
	)

	ClientDisconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textchat_client_disconnects_total",
			Help: "Number of connections torn down by the client.",
		},
	)

	ClientConnectFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textchat_client_connect_failures_total",
			Help: "Number of failed connection attempts.",
		},
	)

	ServerActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "textchat_server_active_connections",
			Help: "Number of connections currently served.",
		},
	)

	ServerCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textchat_server_commands_total",
			Help: "Number of commands handled by the server, by keyword.",
		},
		[]string{"command"},
	)
)
