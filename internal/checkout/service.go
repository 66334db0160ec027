package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/internal/cart"
	"github.com/quickbite-dev/quickbite-backend/internal/orders"
	"github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/internal/users"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

// AttemptState reports where a checkout attempt ended up. COD attempts jump
// straight to complete; online attempts park at awaiting_payment until the
// payment is verified.
type AttemptState string

const (
	StateOrderFailed     AttemptState = "order_failed"
	StateAwaitingPayment AttemptState = "awaiting_payment"
	StatePaymentFailed   AttemptState = "payment_failed"
	StateComplete        AttemptState = "complete"
)

// PlaceOrderInput starts a checkout attempt for the authenticated user.
type PlaceOrderInput struct {
	UserID          uuid.UUID
	BearerToken     string
	PaymentMethod   enums.PaymentMethod
	DeliveryAddress *types.DeliveryAddress
}

// PlaceOrderResult is the outcome returned to the client.
type PlaceOrderResult struct {
	Order *orders.DTO  `json:"order"`
	State AttemptState `json:"state"`
}

// ConfirmPaymentInput finishes an online checkout after the client paid.
type ConfirmPaymentInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

// ConfirmPaymentResult reports the verified payment and final state.
type ConfirmPaymentResult struct {
	Payment *payments.DTO `json:"payment"`
	State   AttemptState  `json:"state"`
}

type profileLoader interface {
	Current(ctx context.Context, bearerToken string) (*users.Profile, error)
}

// Service orchestrates the checkout flow across cart, profile, orders and
// payments.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error)
}

type service struct {
	cart     cart.Service
	orders   orders.Service
	payments payments.Service
	profiles profileLoader
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(
	cartSvc cart.Service,
	ordersSvc orders.Service,
	paymentsSvc payments.Service,
	profiles profileLoader,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if paymentsSvc == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	return &service{
		cart:     cartSvc,
		orders:   ordersSvc,
		payments: paymentsSvc,
		profiles: profiles,
		metrics:  checkoutMetrics,
		logg:     logg,
	}, nil
}

// PlaceOrder validates the cart and delivery location, persists the order,
// and for COD clears the cart immediately. The empty-cart check runs before
// any profile or order call so a hopeless attempt costs nothing.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	view, err := s.cart.Get(ctx, input.UserID.String())
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address, err := s.resolveAddress(ctx, input)
	if err != nil {
		return nil, err
	}

	lines := make([]orders.LineInput, 0, len(view.Items))
	for _, item := range view.Items {
		lines = append(lines, orders.LineInput{
			ItemID:         item.ItemID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
			ShopID:         item.ShopID,
			ShopName:       item.ShopName,
			OwnerID:        item.OwnerID,
		})
	}

	order, err := s.orders.Place(ctx, orders.PlaceInput{
		UserID:          input.UserID,
		Items:           lines,
		PaymentMethod:   input.PaymentMethod,
		DeliveryAddress: *address,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced(input.PaymentMethod.String())

	if input.PaymentMethod == enums.PaymentMethodOnline {
		return &PlaceOrderResult{Order: order, State: StateAwaitingPayment}, nil
	}

	// COD settles at the door; the checkout is done once the order exists.
	if err := s.cart.Clear(ctx, input.UserID.String()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "cart clear failed after order placement")
	}
	return &PlaceOrderResult{Order: order, State: StateComplete}, nil
}

// ConfirmPayment verifies the online payment and only then clears the cart.
// A failed verification leaves the cart intact so the user can retry.
func (s *service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	payment, err := s.payments.Verify(ctx, payments.VerifyInput{
		OrderID: input.OrderID,
		UserID:  input.UserID,
	})
	if err != nil {
		s.metrics.IncPaymentFailure()
		return nil, err
	}

	s.metrics.IncPaymentVerified()

	if err := s.cart.Clear(ctx, input.UserID.String()); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, input.OrderID.String()), "cart clear failed after payment verification")
	}
	return &ConfirmPaymentResult{Payment: payment, State: StateComplete}, nil
}

func (s *service) resolveAddress(ctx context.Context, input PlaceOrderInput) (*types.DeliveryAddress, error) {
	if input.DeliveryAddress != nil && strings.TrimSpace(input.DeliveryAddress.Text) != "" {
		return input.DeliveryAddress, nil
	}

	profile, err := s.profiles.Current(ctx, input.BearerToken)
	if err != nil {
		return nil, err
	}
	if profile.Location == nil || strings.TrimSpace(profile.Location.Text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"delivery location is required; set one on your profile or pass it explicitly")
	}
	return profile.Location, nil
}
