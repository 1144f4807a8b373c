package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/podpulse/pkg/domain"
)

const namespace = "podpulse"

// Collector exposes Prometheus metrics of scan passes, feed checks and feed health
type Collector struct {
	registry      *prometheus.Registry
	passes        prometheus.Counter
	checks        *prometheus.CounterVec
	responseTime  prometheus.Histogram
	passDuration  prometheus.Histogram
	feedsByHealth *prometheus.GaugeVec
}

// NewCollector constructs a collector on its own registry
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_passes_total",
			Help:      "Total number of completed scan passes.",
		}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_checks_total",
			Help:      "Total number of feed checks by outcome and error category.",
		}, []string{"outcome", "category"}),
		responseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_response_seconds",
			Help:      "Response time of feed fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of scan passes.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		feedsByHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feeds_by_health",
			Help:      "Number of tracked feeds per health status.",
		}, []string{"status"}),
	}

	for _, col := range []prometheus.Collector{c.passes, c.checks, c.responseTime, c.passDuration, c.feedsByHealth} {
		if err := c.registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveCheck counts a single feed check
func (c *Collector) ObserveCheck(outcome domain.FeedOutcome) {
	category := string(outcome.Category)
	if category == "" {
		category = "none"
	}
	c.checks.WithLabelValues(string(outcome.Status), category).Inc()
	if outcome.ResponseTime > 0 {
		c.responseTime.Observe(outcome.ResponseTime.Seconds())
	}
}

// ObserveRun counts a finished scan pass
func (c *Collector) ObserveRun(run *domain.ScanRun) {
	c.passes.Inc()
	c.passDuration.Observe(run.Elapsed().Seconds())
}

// SetHealthSummary sets feed counts per health status
func (c *Collector) SetHealthSummary(sum *domain.HealthSummary) {
	for _, st := range domain.AllHealthStatuses {
		c.feedsByHealth.WithLabelValues(string(st)).Set(float64(sum.ByStatus[st]))
	}
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
