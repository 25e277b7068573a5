package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardrelay_webhook_deliveries_total",
			Help: "Webhook flush outcomes by status.",
		},
		[]string{"status"}, // delivered, requeued, dropped
	)

	// WebhookDropsTotal counts deliveries dropped at the retry cap. Every
	// increment is real data loss for that webhook subscriber.
	WebhookDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boardrelay_webhook_drops_total",
			Help: "Deliveries permanently dropped at the retry cap.",
		},
	)

	NotifySendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardrelay_notify_sends_total",
			Help: "Per-recipient gateway sends by outcome.",
		},
		[]string{"status"},
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(WebhookDeliveriesTotal, WebhookDropsTotal, NotifySendsTotal)
}
