package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion pipeline Prometheus metrics.
var (
	PipelineDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "pipeline_documents_total",
			Help:      "Documents processed by the ingestion pipeline, by outcome",
		},
		[]string{"stage", "outcome"}, // stage: "process" / "embed"; outcome: "completed" / "failed"
	)

	PipelineChunksStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "pipeline_chunks_stored_total",
			Help:      "Total chunk rows written by the ingestion pipeline",
		},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Ingestion pipeline stage duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineDocumentsTotal)
	prometheus.MustRegister(PipelineChunksStored)
	prometheus.MustRegister(PipelineStageDuration)
	pipelineMetricsRegistered = true
}
