package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model provider Prometheus metrics, shared by the embedding and
// generation clients.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "provider_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"operation", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "provider_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "provider_tokens_total",
			Help:      "Total provider tokens consumed",
		},
		[]string{"operation", "model", "type"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "provider_errors_total",
			Help:      "Total model provider errors",
		},
		[]string{"operation", "model", "error_type"},
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers Prometheus provider metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderTokensTotal)
	prometheus.MustRegister(ProviderErrorsTotal)
	providerMetricsRegistered = true
}
