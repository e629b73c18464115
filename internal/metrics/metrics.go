package metrics

import (
	"github.com/maheshrc27/postflow/internal/cache"
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	cacheEvents     *prometheus.CounterVec
	predictions     *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	slotsGenerated  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postflow_cache_events_total",
				Help: "Memoized call outcomes by memo name and event",
			},
			[]string{"memo", "event"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postflow_predictions_total",
				Help: "Engagement predictions computed per platform",
			},
			[]string{"platform"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postflow_prediction_fallbacks_total",
				Help: "Predictions that fell back to base factors",
			},
			[]string{"platform"},
		),
		slotsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postflow_schedule_slots_total",
				Help: "Schedule slots produced by rule expansion",
			},
			[]string{"rule_type"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postflow_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(c.cacheEvents, c.predictions, c.fallbacks, c.slotsGenerated, c.requestDuration)
	}
	return c
}

// CacheHooks reports memo events as counter increments.
func (c *Collector) CacheHooks() cache.Hooks {
	if c == nil {
		return cache.Hooks{}
	}
	return cache.Hooks{
		OnHit:   func(name string) { c.cacheEvents.WithLabelValues(name, "hit").Inc() },
		OnMiss:  func(name string) { c.cacheEvents.WithLabelValues(name, "miss").Inc() },
		OnStore: func(name string) { c.cacheEvents.WithLabelValues(name, "store").Inc() },
		OnError: func(name string) { c.cacheEvents.WithLabelValues(name, "error").Inc() },
	}
}

func (c *Collector) PredictionComputed(platform string) {
	if c != nil {
		c.predictions.WithLabelValues(platform).Inc()
	}
}

func (c *Collector) PredictionFellBack(platform string) {
	if c != nil {
		c.fallbacks.WithLabelValues(platform).Inc()
	}
}

func (c *Collector) SlotsGenerated(ruleType string, n int) {
	if c != nil && n > 0 {
		c.slotsGenerated.WithLabelValues(ruleType).Add(float64(n))
	}
}

func (c *Collector) ObserveRequest(method, route, status string, seconds float64) {
	if c != nil {
		c.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
	}
}
