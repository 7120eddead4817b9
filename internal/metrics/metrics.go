package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "ingest",
		Name:      "bytes_total",
		Help:      "Total bytes received from producers",
	})

	IngestMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "ingest",
		Name:      "messages_total",
		Help:      "Total decoded messages by type",
	}, []string{"type"})

	IngestStreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "ingest",
		Name:      "stream_failures_total",
		Help:      "Total producer streams aborted",
	}, []string{"reason"})

	IngestStreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "satstream",
		Subsystem: "ingest",
		Name:      "streams_active",
		Help:      "Producer streams currently open",
	})

	UpdateLogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "satstream",
		Subsystem: "log",
		Name:      "size",
		Help:      "Number of clause updates in the update log",
	})

	UpdateLogAppendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "log",
		Name:      "appends_total",
		Help:      "Total clause updates appended",
	})

	UpdateLogAppendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "log",
		Name:      "append_duration_seconds",
		Help:      "Update log append duration",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20),
	})

	CurrentUpdate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "current_update",
		Help:      "Number of updates applied to the live visualization state",
	})

	AdvanceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "advance_total",
		Help:      "Total advance operations",
	})

	AdvanceBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "advance_batch_size",
		Help:      "Number of updates consumed per advance",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})

	AdvanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "advance_duration_seconds",
		Help:      "Time to advance processors and graph",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	})

	SeekTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "seek_total",
		Help:      "Total seek operations",
	})

	SeekReplayed = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "seek_replayed_updates",
		Help:      "Updates replayed after restoring the floor snapshot",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	})

	SeekDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "seek_duration_seconds",
		Help:      "Time to restore and replay for a seek",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	})

	ReentrantCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "coordinator",
		Name:      "reentrant_calls_total",
		Help:      "Calls ignored because they came from inside a running operation",
	}, []string{"operation"})

	SnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "snapshot",
		Name:      "total",
		Help:      "Total snapshots taken",
	})

	SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "snapshot",
		Name:      "duration_seconds",
		Help:      "Time to write a snapshot",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
	})

	SnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "satstream",
		Subsystem: "snapshot",
		Name:      "size_bytes",
		Help:      "Size of last snapshot in bytes",
	})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "satstream",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Total gRPC requests",
	}, []string{"service", "method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "satstream",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "gRPC request duration",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 20),
	}, []string{"service", "method"})
)
