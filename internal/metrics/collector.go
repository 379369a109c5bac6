package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/domainping/domainping/internal/core"
)

// Collector owns every Prometheus series the service exports.
type Collector struct {
	domainsByStatus      *prometheus.GaugeVec
	notificationsByState *prometheus.GaugeVec

	whoisRefreshTotal    *prometheus.CounterVec
	whoisRefreshDuration prometheus.Histogram

	notificationsSent   *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec

	sweepDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	return &Collector{
		domainsByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "domainping_domains",
			Help: "Tracked domains by derived status",
		}, []string{"status"}),

		notificationsByState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "domainping_notifications",
			Help: "Notifications by lifecycle status",
		}, []string{"status"}),

		whoisRefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainping_whois_refresh_total",
			Help: "WHOIS refresh outcomes",
		}, []string{"result"}),

		whoisRefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "domainping_whois_refresh_duration_seconds",
			Help:    "WHOIS refresh latency",
			Buckets: prometheus.DefBuckets,
		}),

		notificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainping_notifications_sent_total",
			Help: "Reminders delivered per channel",
		}, []string{"channel"}),

		notificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domainping_notifications_failed_total",
			Help: "Delivery failures per channel",
		}, []string{"channel"}),

		sweepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "domainping_sweep_duration_seconds",
			Help:    "Duration of scheduler sweeps",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
}

func (c *Collector) RecordRefresh(result string, duration time.Duration) {
	c.whoisRefreshTotal.WithLabelValues(result).Inc()
	c.whoisRefreshDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordNotification(channel core.Channel, success bool) {
	if success {
		c.notificationsSent.WithLabelValues(string(channel)).Inc()
	} else {
		c.notificationsFailed.WithLabelValues(string(channel)).Inc()
	}
}

func (c *Collector) SetDomainStatistics(stats *core.DomainStatistics) {
	c.domainsByStatus.WithLabelValues(string(core.StatusActive)).Set(float64(stats.Active))
	c.domainsByStatus.WithLabelValues(string(core.StatusExpired)).Set(float64(stats.Expired))
	c.domainsByStatus.WithLabelValues(string(core.StatusCritical)).Set(float64(stats.Critical))
	c.domainsByStatus.WithLabelValues(string(core.StatusWarning)).Set(float64(stats.Warning))
}

func (c *Collector) SetNotificationCounts(counts map[core.NotificationStatus]int) {
	for _, status := range []core.NotificationStatus{
		core.NotificationPending, core.NotificationSent,
		core.NotificationFailed, core.NotificationCancelled,
	} {
		c.notificationsByState.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func (c *Collector) ObserveSweep(job string, duration time.Duration) {
	c.sweepDuration.WithLabelValues(job).Observe(duration.Seconds())
}
