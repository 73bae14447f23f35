package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripbot_provider_requests_total",
			Help: "Total number of outbound provider requests by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripbot_provider_request_duration_seconds",
			Help:    "Duration of outbound provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripbot_chat_messages_total",
			Help: "Total number of chat messages handled by category and result",
		},
		[]string{"category", "result"},
	)
)

// ObserveProvider records one provider request.
func ObserveProvider(provider, outcome string, took time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(took.Seconds())
}

// ObserveMessage records one handled chat message.
func ObserveMessage(category, result string) {
	ChatMessages.WithLabelValues(category, result).Inc()
}
