// Package metrics exposes the server's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "plaza",
		Name:      "connections",
		Help:      "Currently open gateway connections.",
	})
	BroadcastsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plaza",
		Name:      "broadcast_frames_sent_total",
		Help:      "Presence frames delivered to member send buffers.",
	})
	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plaza",
		Name:      "broadcast_frames_dropped_total",
		Help:      "Presence frames dropped on closed or backpressured members.",
	})
	EnvelopesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plaza",
		Name:      "signal_envelopes_relayed_total",
		Help:      "Signaling envelopes delivered to their target.",
	})
	EnvelopesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plaza",
		Name:      "signal_envelopes_dropped_total",
		Help:      "Signaling envelopes dropped on relay miss.",
	})
	ChatStoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "plaza",
		Name:      "chat_store_failures_total",
		Help:      "Failed chat store appends and reads.",
	})
)
