// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsTotal counts frames handed to the codec, by outcome.
	// result is "ok" or a core.ErrorKind label.
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vjtap_packets_total",
			Help: "Total number of frames processed by the header decompressor",
		},
		[]string{"direction", "variant", "result"},
	)

	// DesyncTotal counts transitions of a direction table into the desynchronized state
	DesyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vjtap_desync_total",
			Help: "Total number of times a link direction lost header synchronization",
		},
		[]string{"direction"},
	)

	// SessionResetsTotal counts explicit resets of all slot tables
	SessionResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vjtap_session_resets_total",
			Help: "Total number of slot table resets",
		},
	)

	// DecompressLatencySeconds measures per-frame decompression latency
	DecompressLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vjtap_decompress_latency_seconds",
			Help:    "Latency of header decompression in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0000001, 2, 16), // 100ns to ~3ms
		},
		[]string{"variant"},
	)
)
