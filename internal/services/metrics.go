package services

import "github.com/prometheus/client_golang/prometheus"

// Event kinds and outcome labels for webhookEvents.
const (
	kindCall    = "call"
	kindContact = "contact"

	outcomeError = "error"
)

// webhookEvents counts processed webhooks by kind (call|contact) and outcome
// (inserted|duplicate|error).
var webhookEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vanillasoft_webhook_events_total",
		Help: "Total number of VanillaSoft webhook events processed, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

func init() {
	prometheus.MustRegister(webhookEvents)
}
