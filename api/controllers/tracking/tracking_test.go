package tracking

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trk "github.com/quickbite-dev/quickbite-backend/internal/tracking"
)

func dialStream(t *testing.T, hub *trk.Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(Stream(hub, nil, nil))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *trk.Hub, orderID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(orderID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("order %s never reached %d subscribers", orderID, want)
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame outboundFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamDeliversJoinedRoomUpdates(t *testing.T) {
	hub := trk.NewHub(nil, nil)
	conn := dialStream(t, hub)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameJoinOrderRoom, OrderID: "order-a"}))
	waitForSubscribers(t, hub, "order-a", 1)

	hub.Dispatch(trk.LocationUpdate{OrderID: "order-a", Latitude: 12.97, Longitude: 77.59})

	frame := readFrame(t, conn)
	assert.Equal(t, frameLocationUpdate, frame.Type)
	assert.Equal(t, "order-a", frame.Data.OrderID)
	assert.Equal(t, 12.97, frame.Data.Latitude)
}

func TestStreamJoiningNewRoomLeavesOld(t *testing.T) {
	hub := trk.NewHub(nil, nil)
	conn := dialStream(t, hub)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameJoinOrderRoom, OrderID: "order-a"}))
	waitForSubscribers(t, hub, "order-a", 1)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameJoinOrderRoom, OrderID: "order-b"}))
	waitForSubscribers(t, hub, "order-b", 1)
	waitForSubscribers(t, hub, "order-a", 0)

	hub.Dispatch(trk.LocationUpdate{OrderID: "order-a", Latitude: 1})
	hub.Dispatch(trk.LocationUpdate{OrderID: "order-b", Latitude: 2})

	frame := readFrame(t, conn)
	assert.Equal(t, "order-b", frame.Data.OrderID)
}

func TestStreamLeaveStopsDelivery(t *testing.T) {
	hub := trk.NewHub(nil, nil)
	conn := dialStream(t, hub)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameJoinOrderRoom, OrderID: "order-a"}))
	waitForSubscribers(t, hub, "order-a", 1)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameLeaveOrderRoom}))
	waitForSubscribers(t, hub, "order-a", 0)
}

func TestStreamDisconnectDetachesSubscriber(t *testing.T) {
	hub := trk.NewHub(nil, nil)
	conn := dialStream(t, hub)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameJoinOrderRoom, OrderID: "order-a"}))
	waitForSubscribers(t, hub, "order-a", 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, "order-a", 0)
}
