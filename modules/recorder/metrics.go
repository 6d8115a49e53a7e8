package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "radiorec"

var (
	metricBytesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "bytes_written_total",
		Help:      "Audio bytes written to recordings.",
	}, []string{"station"})

	metricFilesOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "files_opened_total",
		Help:      "Recording files opened.",
	}, []string{"station"})

	metricMetadataChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "metadata_changes_total",
		Help:      "Track changes announced by the station.",
	}, []string{"station"})

	metricReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "reconnects_total",
		Help:      "Reconnects after retryable failures.",
	}, []string{"station"})

	metricTagging = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tagging_total",
		Help:      "ID3 tagging jobs by result.",
	}, []string{"station", "result"})

	metricAborts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "aborts_total",
		Help:      "Recordings stopped by an abort condition.",
	}, []string{"station", "reason"})
)
