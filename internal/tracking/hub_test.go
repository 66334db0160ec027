package tracking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
)

// chanFeed drives Run from a plain channel in tests.
type chanFeed struct {
	updates chan LocationUpdate
}

func (f *chanFeed) Next(ctx context.Context) (LocationUpdate, error) {
	select {
	case update := <-f.updates:
		return update, nil
	case <-ctx.Done():
		return LocationUpdate{}, ctx.Err()
	}
}

func (f *chanFeed) Close() error { return nil }

func TestHubDeliversToMatchingOrderOnly(t *testing.T) {
	hub := NewHub(nil, nil)

	var gotA, gotB []LocationUpdate
	cancelA := hub.Subscribe("order-a", func(u LocationUpdate) { gotA = append(gotA, u) })
	cancelB := hub.Subscribe("order-b", func(u LocationUpdate) { gotB = append(gotB, u) })
	defer cancelA()
	defer cancelB()

	hub.Dispatch(LocationUpdate{OrderID: "order-a", Latitude: 12.97, Longitude: 77.59})
	hub.Dispatch(LocationUpdate{OrderID: "order-b", Latitude: 13.08, Longitude: 80.27})
	hub.Dispatch(LocationUpdate{OrderID: "order-a", Latitude: 12.98, Longitude: 77.60})

	require.Len(t, gotA, 2)
	require.Len(t, gotB, 1)
	assert.Equal(t, 12.98, gotA[1].Latitude)
	assert.Equal(t, "order-b", gotB[0].OrderID)
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub(nil, nil)

	var got int
	cancel := hub.Subscribe("order-a", func(LocationUpdate) { got++ })

	hub.Dispatch(LocationUpdate{OrderID: "order-a"})
	cancel()
	cancel() // repeat cancel must be safe
	hub.Dispatch(LocationUpdate{OrderID: "order-a"})

	assert.Equal(t, 1, got)
	assert.Zero(t, hub.SubscriberCount("order-a"))
}

func TestHubMultipleSubscribersSameOrder(t *testing.T) {
	hub := NewHub(nil, nil)

	var first, second int
	cancelFirst := hub.Subscribe("order-a", func(LocationUpdate) { first++ })
	defer hub.Subscribe("order-a", func(LocationUpdate) { second++ })()

	hub.Dispatch(LocationUpdate{OrderID: "order-a"})
	cancelFirst()
	hub.Dispatch(LocationUpdate{OrderID: "order-a"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 1, hub.SubscriberCount("order-a"))
}

func TestHubCountsDroppedUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(metrics.NewTrackingMetrics(reg), nil)

	hub.Dispatch(LocationUpdate{OrderID: "nobody-watching"})
	hub.Dispatch(LocationUpdate{})

	families, err := reg.Gather()
	require.NoError(t, err)
	dropped := findCounter(t, families, "tracking_dropped_updates_total")
	assert.Equal(t, float64(2), dropped)
}

func TestHubRunDispatchesUntilCancelled(t *testing.T) {
	hub := NewHub(nil, nil)
	feed := &chanFeed{updates: make(chan LocationUpdate, 4)}

	received := make(chan LocationUpdate, 4)
	defer hub.Subscribe("order-a", func(u LocationUpdate) { received <- u })()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx, feed) }()

	feed.updates <- LocationUpdate{OrderID: "order-a", Latitude: 12.97}

	select {
	case update := <-received:
		assert.Equal(t, 12.97, update.Latitude)
	case <-time.After(2 * time.Second):
		t.Fatal("update was not dispatched")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

type capturePublisher struct {
	channel string
	payload []byte
}

func (c *capturePublisher) Publish(_ context.Context, channel string, payload any) error {
	c.channel = channel
	c.payload = payload.([]byte)
	return nil
}

func TestPublisherEncodesUpdate(t *testing.T) {
	sink := &capturePublisher{}
	pub, err := NewPublisher(sink, "tracking:updates")
	require.NoError(t, err)

	err = pub.Publish(context.Background(), LocationUpdate{
		OrderID:   "order-a",
		Latitude:  12.97,
		Longitude: 77.59,
		AgentName: "Ravi",
	})
	require.NoError(t, err)

	assert.Equal(t, "tracking:updates", sink.channel)
	var decoded LocationUpdate
	require.NoError(t, json.Unmarshal(sink.payload, &decoded))
	assert.Equal(t, "order-a", decoded.OrderID)
	assert.Equal(t, "Ravi", decoded.AgentName)
}

func TestPublisherRequiresOrderID(t *testing.T) {
	sink := &capturePublisher{}
	pub, err := NewPublisher(sink, "tracking:updates")
	require.NoError(t, err)

	err = pub.Publish(context.Background(), LocationUpdate{Latitude: 12.97})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, sink.payload)
}

func findCounter(t *testing.T, families []*dto.MetricFamily, name string) float64 {
	t.Helper()
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		require.NotEmpty(t, family.GetMetric())
		return family.GetMetric()[0].GetCounter().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
