package payments

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/api/middleware"
	"github.com/quickbite-dev/quickbite-backend/api/responses"
	"github.com/quickbite-dev/quickbite-backend/api/validators"
	"github.com/quickbite-dev/quickbite-backend/internal/checkout"
	paysvc "github.com/quickbite-dev/quickbite-backend/internal/payments"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
)

type createRequest struct {
	OrderID  uuid.UUID `json:"orderId" validate:"required"`
	SourceID string    `json:"sourceId" validate:"required"`
}

type verifyRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// Create charges the card source for an online order's total.
func Create(svc paysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Create(r.Context(), paysvc.CreateInput{
			OrderID:  payload.OrderID,
			UserID:   userID,
			SourceID: payload.SourceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// Verify settles the checkout once the gateway reports the payment complete.
func Verify(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ConfirmPayment(r.Context(), checkout.ConfirmPaymentInput{
			OrderID: payload.OrderID,
			UserID:  userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
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
