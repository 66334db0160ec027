package orders

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/api/middleware"
	"github.com/quickbite-dev/quickbite-backend/api/responses"
	"github.com/quickbite-dev/quickbite-backend/api/validators"
	"github.com/quickbite-dev/quickbite-backend/internal/checkout"
	ordersvc "github.com/quickbite-dev/quickbite-backend/internal/orders"
	"github.com/quickbite-dev/quickbite-backend/internal/tracking"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

type addressPayload struct {
	Text string   `json:"text" validate:"required"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type placeOrderRequest struct {
	PaymentMethod   string          `json:"paymentMethod" validate:"required,oneof=cod online"`
	DeliveryAddress *addressPayload `json:"deliveryAddress,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type assignAgentRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
}

// Pointers keep zero coordinates valid; the equator and the prime meridian
// are real places.
type locationRequest struct {
	Lat       *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng       *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	AgentName string   `json:"agentName,omitempty"`
}

// PlaceOrder runs the checkout flow against the caller's cart.
func PlaceOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.PlaceOrderInput{
			UserID:        userID,
			BearerToken:   middleware.TokenFromContext(r.Context()),
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
		}
		if payload.DeliveryAddress != nil {
			input.DeliveryAddress = &types.DeliveryAddress{
				Text:      payload.DeliveryAddress.Text,
				Latitude:  payload.DeliveryAddress.Lat,
				Longitude: payload.DeliveryAddress.Lng,
			}
		}

		result, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// MyOrders lists the caller's orders, newest first.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns one of the caller's orders with its items and payment.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.UUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateStatus advances an order one step along its lifecycle. Staff only.
func UpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireStaff(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.UUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AssignAgent attaches a delivery agent's contact to an order. Staff only.
func AssignAgent(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireStaff(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.UUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignAgentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AssignAgent(r.Context(), orderID, payload.Name, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ReportLocation ingests a courier position and fans it out to trackers.
func ReportLocation(pub *tracking.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := requireStaff(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.UUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload locationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := tracking.LocationUpdate{
			OrderID:    orderID.String(),
			Latitude:   *payload.Lat,
			Longitude:  *payload.Lng,
			AgentName:  payload.AgentName,
			RecordedAt: time.Now().UTC(),
		}
		if err := pub.Publish(r.Context(), update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return userID, nil
}

func requireStaff(r *http.Request) error {
	switch middleware.RoleFromContext(r.Context()) {
	case "admin", "agent":
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "staff access required")
}
