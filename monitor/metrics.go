package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatpp",
		Name:      "relay_requests_total",
		Help:      "Relayed chat-completion requests by channel and outcome.",
	}, []string{"channel", "outcome"})

	quotaDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatpp",
		Name:      "quota_denials_total",
		Help:      "Requests rejected by the quota evaluator.",
	})

	chargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatpp",
		Name:      "charges_total",
		Help:      "Applied charge plans by kind.",
	}, []string{"kind"})
)

// Relay request outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeUpstreamError = "upstream_error"
	OutcomeStreamError   = "stream_error"
)

func RecordRelayRequest(channel, outcome string) {
	relayRequestsTotal.WithLabelValues(channel, outcome).Inc()
}

func RecordQuotaDenial() {
	quotaDenialsTotal.Inc()
}

func RecordCharge(kind string) {
	chargesTotal.WithLabelValues(kind).Inc()
}
