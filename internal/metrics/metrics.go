package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportbeacon_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_tips_total",
			Help: "Total number of tip submissions by final status",
		},
		[]string{"status", "source"},
	)

	TipAmountCents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sportbeacon_tip_amount_cents",
			Help:    "Completed tip amounts in cents",
			Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		},
	)

	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportbeacon_refunds_total",
			Help: "Total number of refunded tips",
		},
	)

	StatsConflictRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportbeacon_stats_conflict_retries_total",
			Help: "Creator stats transactions retried due to concurrent writers",
		},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"rarity"},
	)

	TierUpgradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_tier_upgrades_total",
			Help: "Creator monetization tier upgrades",
		},
		[]string{"tier"},
	)

	PayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_payouts_total",
			Help: "Total number of payout requests by status",
		},
		[]string{"status"},
	)

	DownstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_tip_downstream_failures_total",
			Help: "Non-fatal failures after a tip was completed",
		},
		[]string{"step"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportbeacon_notifications_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"type", "status"},
	)

	NotifyQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportbeacon_notify_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTip(status, source string) {
	TipsTotal.WithLabelValues(status, source).Inc()
}

func RecordTipAmount(amountCents int64) {
	TipAmountCents.Observe(float64(amountCents))
}

func RecordRefund() {
	RefundsTotal.Inc()
}

func RecordStatsConflictRetry() {
	StatsConflictRetriesTotal.Inc()
}

func RecordBadgeAwarded(rarity string) {
	BadgesAwardedTotal.WithLabelValues(rarity).Inc()
}

func RecordTierUpgrade(tier string) {
	TierUpgradesTotal.WithLabelValues(tier).Inc()
}

func RecordPayout(status string) {
	PayoutsTotal.WithLabelValues(status).Inc()
}

func RecordDownstreamFailure(step string) {
	DownstreamFailuresTotal.WithLabelValues(step).Inc()
}

func RecordNotification(notifType, status string) {
	NotificationsSentTotal.WithLabelValues(notifType, status).Inc()
}
