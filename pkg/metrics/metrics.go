package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records item-sync outcomes. All methods are nil-safe so
// callers can pass a zero value in tests.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSyncMetrics registers the item-sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "item_sync_duration_seconds",
		Help:    "Duration of order item sync transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "item_sync_success",
		Help: "Successful order item syncs.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "item_sync_failure",
		Help: "Failed order item syncs.",
	}, []string{"trigger"})
	reg.MustRegister(duration, success, failure)
	return &SyncMetrics{duration: duration, success: success, failure: failure}
}

// ObserveDuration records the duration of one sync attempt.
func (s *SyncMetrics) ObserveDuration(outcome string, d time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

// IncSuccess increments the success counter for the named trigger.
func (s *SyncMetrics) IncSuccess(trigger string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailure increments the failure counter for the named trigger.
func (s *SyncMetrics) IncFailure(trigger string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// PublisherMetrics records outbox publisher behaviour.
type PublisherMetrics struct {
	published prometheus.Counter
	failed    prometheus.Counter
	batch     prometheus.Histogram
}

// NewPublisherMetrics registers the outbox publisher metrics.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published to the domain topic.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed",
		Help: "Outbox publish attempts that failed.",
	})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publisher batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, batch)
	return &PublisherMetrics{published: published, failed: failed, batch: batch}
}

// IncPublished increments the published counter.
func (p *PublisherMetrics) IncPublished() {
	if p == nil || p.published == nil {
		return
	}
	p.published.Inc()
}

// IncFailed increments the failed counter.
func (p *PublisherMetrics) IncFailed() {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.Inc()
}

// ObserveBatch records the duration of one publisher batch.
func (p *PublisherMetrics) ObserveBatch(d time.Duration) {
	if p == nil || p.batch == nil {
		return
	}
	p.batch.Observe(d.Seconds())
}

// FeedMetrics records the campaign board feed pipeline.
type FeedMetrics struct {
	events        *prometheus.CounterVec
	recompute     prometheus.Histogram
	subscriptions prometheus.Gauge
}

// NewFeedMetrics registers the feed metrics.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	if reg == nil {
		return &FeedMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_events_processed",
		Help: "Change events handled by the board feed.",
	}, []string{"event_type"})
	recompute := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_recompute_duration_seconds",
		Help:    "Duration of campaign total recomputes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	subscriptions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_active_subscriptions",
		Help: "Currently active board feed subscriptions.",
	})
	reg.MustRegister(events, recompute, subscriptions)
	return &FeedMetrics{events: events, recompute: recompute, subscriptions: subscriptions}
}

// IncEvent counts one processed change event.
func (f *FeedMetrics) IncEvent(eventType string) {
	if f == nil || f.events == nil {
		return
	}
	f.events.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveRecompute records the duration of one campaign total recompute.
func (f *FeedMetrics) ObserveRecompute(d time.Duration) {
	if f == nil || f.recompute == nil {
		return
	}
	f.recompute.Observe(d.Seconds())
}

// SubscriptionOpened bumps the active subscription gauge.
func (f *FeedMetrics) SubscriptionOpened() {
	if f == nil || f.subscriptions == nil {
		return
	}
	f.subscriptions.Inc()
}

// SubscriptionClosed drops the active subscription gauge.
func (f *FeedMetrics) SubscriptionClosed() {
	if f == nil || f.subscriptions == nil {
		return
	}
	f.subscriptions.Dec()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
