package tracking

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	trk "github.com/quickbite-dev/quickbite-backend/internal/tracking"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
)

const (
	frameJoinOrderRoom  = "join_order_room"
	frameLeaveOrderRoom = "leave_order_room"
	frameLocationUpdate = "delivery_location_update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect straight from the tracking page; origin policy is
	// enforced by the CORS layer on the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId,omitempty"`
}

type outboundFrame struct {
	Type string             `json:"type"`
	Data trk.LocationUpdate `json:"data"`
}

// session is one websocket connection and its at-most-one room membership.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  func()
}

func (s *session) send(update trk.LocationUpdate) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(outboundFrame{Type: frameLocationUpdate, Data: update})
}

func (s *session) leave() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stream upgrades the connection and serves join/leave frames. A client joins
// one order room at a time; joining another room implicitly leaves the first.
func Stream(hub *trk.Hub, trackingMetrics *metrics.TrackingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logg != nil {
				logg.Warn(r.Context(), "websocket upgrade rejected")
			}
			return
		}

		sess := &session{conn: conn}
		defer func() {
			sess.leave()
			_ = conn.Close()
		}()

		for {
			var frame inboundFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}

			switch frame.Type {
			case frameJoinOrderRoom:
				orderID := strings.TrimSpace(frame.OrderID)
				if orderID == "" {
					continue
				}
				sess.leave()
				sess.cancel = hub.Subscribe(orderID, func(update trk.LocationUpdate) {
					if err := sess.send(update); err != nil {
						trackingMetrics.IncDroppedUpdate()
					}
				})
			case frameLeaveOrderRoom:
				sess.leave()
			}
		}
	}
}
