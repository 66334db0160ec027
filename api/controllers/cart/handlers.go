package cart

import (
	"context"
	"net/http"

	"github.com/quickbite-dev/quickbite-backend/api/middleware"
	"github.com/quickbite-dev/quickbite-backend/api/responses"
	"github.com/quickbite-dev/quickbite-backend/api/validators"
	cartsvc "github.com/quickbite-dev/quickbite-backend/internal/cart"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
)

type addRequest struct {
	ItemID         string `json:"itemId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ShopID         string `json:"shopId,omitempty"`
	ShopName       string `json:"shopName,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
}

type itemRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

type addResponse struct {
	Outcome cartsvc.AddOutcome `json:"outcome"`
	Cart    *cartsvc.View      `json:"cart"`
}

// Add puts a menu item into the cart. Re-adding an existing item reports
// already_present and changes nothing.
func Add(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Add(r.Context(), userID, cartsvc.Item{
			ItemID:         payload.ItemID,
			Name:           payload.Name,
			UnitPriceCents: payload.UnitPriceCents,
			ImageURL:       payload.ImageURL,
			ShopID:         payload.ShopID,
			ShopName:       payload.ShopName,
			OwnerID:        payload.OwnerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if outcome == cartsvc.AddOutcomeInserted {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, addResponse{Outcome: outcome, Cart: view})
	}
}

// IncreaseQty bumps an existing line's quantity by one.
func IncreaseQty(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjust(logg, svc.IncreaseQty)
}

// DecreaseQty lowers an existing line's quantity, never below one.
func DecreaseQty(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjust(logg, svc.DecreaseQty)
}

// Remove drops a line from the cart.
func Remove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjust(logg, svc.Remove)
}

// Get returns the cart with its derived total.
func Get(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Clear empties the cart.
func Clear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, &cartsvc.View{Items: []cartsvc.Item{}})
	}
}

func adjust(logg *logger.Logger, op func(ctx context.Context, userID, itemID string) (*cartsvc.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := op(r.Context(), userID, payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func requireUserID(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	return userID, nil
}
