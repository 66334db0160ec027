package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TrackingMetrics observes the realtime tracking hub.
type TrackingMetrics struct {
	subscribers     prometheus.Gauge
	locationUpdates prometheus.Counter
	droppedUpdates  prometheus.Counter
}

// NewTrackingMetrics registers the tracking metrics on the provided registerer.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracking_subscribers",
		Help: "Live order tracking subscriptions.",
	})
	locationUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_location_updates_total",
		Help: "Courier location updates fanned out to subscribers.",
	})
	droppedUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_dropped_updates_total",
		Help: "Location updates dropped because no subscriber consumed them in time.",
	})
	reg.MustRegister(subscribers, locationUpdates, droppedUpdates)
	return &TrackingMetrics{
		subscribers:     subscribers,
		locationUpdates: locationUpdates,
		droppedUpdates:  droppedUpdates,
	}
}

// IncSubscribers records a new subscription.
func (t *TrackingMetrics) IncSubscribers() {
	if t == nil || t.subscribers == nil {
		return
	}
	t.subscribers.Inc()
}

// DecSubscribers records a closed subscription.
func (t *TrackingMetrics) DecSubscribers() {
	if t == nil || t.subscribers == nil {
		return
	}
	t.subscribers.Dec()
}

// IncLocationUpdate counts a delivered location update.
func (t *TrackingMetrics) IncLocationUpdate() {
	if t == nil || t.locationUpdates == nil {
		return
	}
	t.locationUpdates.Inc()
}

// IncDroppedUpdate counts an update that could not be delivered.
func (t *TrackingMetrics) IncDroppedUpdate() {
	if t == nil || t.droppedUpdates == nil {
		return
	}
	t.droppedUpdates.Inc()
}
