package tracking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
)

// LocationUpdate is one courier position report for an order in transit.
type LocationUpdate struct {
	OrderID    string    `json:"orderId"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	AgentName  string    `json:"agentName,omitempty"`
	RecordedAt time.Time `json:"recordedAt,omitempty"`
}

// Handler receives updates for the order a subscriber joined.
type Handler func(update LocationUpdate)

// Feed is a source of location updates, typically backed by Redis pub/sub.
type Feed interface {
	Next(ctx context.Context) (LocationUpdate, error)
	Close() error
}

// Hub fans location updates out to per-order subscribers. Subscribers only
// see updates for the order they joined.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]Handler
	nextID uint64

	metrics *metrics.TrackingMetrics
	logg    *logger.Logger
}

// NewHub builds an empty hub.
func NewHub(trackingMetrics *metrics.TrackingMetrics, logg *logger.Logger) *Hub {
	return &Hub{
		subs:    map[string]map[uint64]Handler{},
		metrics: trackingMetrics,
		logg:    logg,
	}
}

// Subscribe registers a handler for one order's updates and returns a cancel
// function. Cancel is idempotent and safe to call from any goroutine.
func (h *Hub) Subscribe(orderID string, fn Handler) func() {
	if strings.TrimSpace(orderID) == "" || fn == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	room, ok := h.subs[orderID]
	if !ok {
		room = map[uint64]Handler{}
		h.subs[orderID] = room
	}
	room[id] = fn
	h.mu.Unlock()

	h.metrics.IncSubscribers()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if room, ok := h.subs[orderID]; ok {
				delete(room, id)
				if len(room) == 0 {
					delete(h.subs, orderID)
				}
			}
			h.mu.Unlock()
			h.metrics.DecSubscribers()
		})
	}
}

// Dispatch delivers an update to every subscriber of its order. Updates for
// orders nobody is watching are dropped.
func (h *Hub) Dispatch(update LocationUpdate) {
	if strings.TrimSpace(update.OrderID) == "" {
		h.metrics.IncDroppedUpdate()
		return
	}

	h.mu.Lock()
	room := h.subs[update.OrderID]
	handlers := make([]Handler, 0, len(room))
	for _, fn := range room {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	if len(handlers) == 0 {
		h.metrics.IncDroppedUpdate()
		return
	}
	for _, fn := range handlers {
		fn(update)
		h.metrics.IncLocationUpdate()
	}
}

// SubscriberCount reports how many handlers are watching an order.
func (h *Hub) SubscriberCount(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orderID])
}

// Run consumes the feed until the context ends, dispatching each update.
// It returns the context error on shutdown and the feed error otherwise.
func (h *Hub) Run(ctx context.Context, feed Feed) error {
	for {
		update, err := feed.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if h.logg != nil {
				h.logg.Error(ctx, "tracking feed terminated", err)
			}
			return err
		}
		h.Dispatch(update)
	}
}
