package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbite-dev/quickbite-backend/internal/cart"
	"github.com/quickbite-dev/quickbite-backend/internal/orders"
	"github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/internal/users"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

type stubCart struct {
	view    cart.View
	cleared int
	getErr  error
}

func (s *stubCart) Add(context.Context, string, cart.Item) (cart.AddOutcome, error) {
	return cart.AddOutcomeInserted, nil
}

func (s *stubCart) IncreaseQty(context.Context, string, string) (*cart.View, error) {
	return &s.view, nil
}

func (s *stubCart) DecreaseQty(context.Context, string, string) (*cart.View, error) {
	return &s.view, nil
}

func (s *stubCart) Remove(context.Context, string, string) (*cart.View, error) {
	return &s.view, nil
}

func (s *stubCart) Clear(context.Context, string) error {
	s.cleared++
	return nil
}

func (s *stubCart) Get(context.Context, string) (*cart.View, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &s.view, nil
}

type stubOrders struct {
	placed    []orders.PlaceInput
	placeErr  error
	nextOrder *orders.DTO
}

func (s *stubOrders) Place(_ context.Context, input orders.PlaceInput) (*orders.DTO, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	s.placed = append(s.placed, input)
	if s.nextOrder != nil {
		return s.nextOrder, nil
	}
	var total int64
	for _, line := range input.Items {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return &orders.DTO{
		ID:            uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		TotalCents:    total,
		Currency:      "INR",
		CreatedAt:     time.Now(),
	}, nil
}

func (s *stubOrders) ListForUser(context.Context, uuid.UUID) ([]orders.DTO, error) {
	return nil, nil
}

func (s *stubOrders) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*orders.DTO, error) {
	return nil, nil
}

func (s *stubOrders) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*orders.DTO, error) {
	return nil, nil
}

func (s *stubOrders) AssignAgent(context.Context, uuid.UUID, string, string) (*orders.DTO, error) {
	return nil, nil
}

type stubPayments struct {
	verified  int
	verifyErr error
}

func (s *stubPayments) Create(context.Context, payments.CreateInput) (*payments.DTO, error) {
	return &payments.DTO{Status: enums.PaymentStatusCreated}, nil
}

func (s *stubPayments) Verify(_ context.Context, input payments.VerifyInput) (*payments.DTO, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	s.verified++
	now := time.Now()
	return &payments.DTO{
		OrderID:    input.OrderID,
		Status:     enums.PaymentStatusVerified,
		VerifiedAt: &now,
	}, nil
}

type stubProfiles struct {
	profile *users.Profile
	err     error
	calls   int
}

func (s *stubProfiles) Current(context.Context, string) (*users.Profile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type checkoutFixture struct {
	svc      Service
	cart     *stubCart
	orders   *stubOrders
	payments *stubPayments
	profiles *stubProfiles
	userID   uuid.UUID
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	cartStub := &stubCart{view: cart.View{
		Items: []cart.Item{
			{ItemID: "item-1", Name: "Paneer Wrap", UnitPriceCents: 24900, Quantity: 2, ShopID: "shop-42", ShopName: "Madras Tiffin House", OwnerID: "owner-7"},
			{ItemID: "item-2", Name: "Masala Fries", UnitPriceCents: 9900, Quantity: 1, ShopID: "shop-42", ShopName: "Madras Tiffin House", OwnerID: "owner-7"},
		},
		TotalCents: 59700,
	}}
	ordersStub := &stubOrders{}
	paymentsStub := &stubPayments{}
	profilesStub := &stubProfiles{profile: &users.Profile{
		ID:       uuid.NewString(),
		FullName: "Asha Rao",
		Location: &types.DeliveryAddress{Text: "12 MG Road, Bengaluru"},
	}}

	svc, err := NewService(cartStub, ordersStub, paymentsStub, profilesStub, nil, nil)
	require.NoError(t, err)

	return &checkoutFixture{
		svc:      svc,
		cart:     cartStub,
		orders:   ordersStub,
		payments: paymentsStub,
		profiles: profilesStub,
		userID:   uuid.New(),
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.cart.view = cart.View{Items: []cart.Item{}}

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Zero(t, f.profiles.calls, "profile must not be fetched for an empty cart")
	assert.Empty(t, f.orders.placed)
	assert.Zero(t, f.cart.cleared)
}

func TestPlaceOrderCODCompletesAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, result.State)
	require.NotNil(t, result.Order)
	assert.Equal(t, 1, f.cart.cleared)

	require.Len(t, f.orders.placed, 1)
	placed := f.orders.placed[0]
	assert.Equal(t, f.userID, placed.UserID)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "item-1", placed.Items[0].ItemID)
	assert.Equal(t, 2, placed.Items[0].Quantity)
	assert.Equal(t, "shop-42", placed.Items[0].ShopID)
	assert.Equal(t, "Madras Tiffin House", placed.Items[0].ShopName)
	assert.Equal(t, "owner-7", placed.Items[0].OwnerID)
	assert.Equal(t, "12 MG Road, Bengaluru", placed.DeliveryAddress.Text)
}

func TestPlaceOrderOnlineKeepsCartUntilVerification(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodOnline,
	})
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingPayment, result.State)
	assert.Zero(t, f.cart.cleared, "online checkout must keep the cart until payment verifies")
}

func TestPlaceOrderUsesExplicitAddressOverProfile(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:          f.userID,
		PaymentMethod:   enums.PaymentMethodCOD,
		DeliveryAddress: &types.DeliveryAddress{Text: "7 Residency Road"},
	})
	require.NoError(t, err)

	assert.Zero(t, f.profiles.calls)
	require.Len(t, f.orders.placed, 1)
	assert.Equal(t, "7 Residency Road", f.orders.placed[0].DeliveryAddress.Text)
}

func TestPlaceOrderRequiresSomeAddress(t *testing.T) {
	f := newCheckoutFixture(t)
	f.profiles.profile.Location = nil

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, f.orders.placed)
}

func TestPlaceOrderRejectsUnknownMethod(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        f.userID,
		PaymentMethod: enums.PaymentMethod("crypto"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestConfirmPaymentClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID: uuid.New(),
		UserID:  f.userID,
	})
	require.NoError(t, err)

	assert.Equal(t, StateComplete, result.State)
	assert.Equal(t, enums.PaymentStatusVerified, result.Payment.Status)
	assert.Equal(t, 1, f.cart.cleared)
}

func TestConfirmPaymentFailureLeavesCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.payments.verifyErr = pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed")

	_, err := f.svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID: uuid.New(),
		UserID:  f.userID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Zero(t, f.cart.cleared, "failed verification must leave the cart intact")
}
