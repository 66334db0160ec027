package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbite-dev/quickbite-backend/api/middleware"
	"github.com/quickbite-dev/quickbite-backend/internal/checkout"
	paysvc "github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
)

type stubPayments struct {
	lastCreate paysvc.CreateInput
	createErr  error
}

func (s *stubPayments) Create(_ context.Context, input paysvc.CreateInput) (*paysvc.DTO, error) {
	s.lastCreate = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &paysvc.DTO{OrderID: input.OrderID, Status: enums.PaymentStatusCreated}, nil
}

func (s *stubPayments) Verify(context.Context, paysvc.VerifyInput) (*paysvc.DTO, error) {
	return nil, nil
}

type stubCheckout struct {
	lastConfirm checkout.ConfirmPaymentInput
	confirmErr  error
}

func (s *stubCheckout) PlaceOrder(context.Context, checkout.PlaceOrderInput) (*checkout.PlaceOrderResult, error) {
	return nil, nil
}

func (s *stubCheckout) ConfirmPayment(_ context.Context, input checkout.ConfirmPaymentInput) (*checkout.ConfirmPaymentResult, error) {
	s.lastConfirm = input
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &checkout.ConfirmPaymentResult{
		Payment: &paysvc.DTO{OrderID: input.OrderID, Status: enums.PaymentStatusVerified},
		State:   checkout.StateComplete,
	}, nil
}

func userRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCreateForwardsSource(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubPayments{}

	body := `{"orderId":"` + orderID.String() + `","sourceId":"cnon:card-nonce"}`
	req := userRequest(http.MethodPost, "/api/payment/create", body, userID)
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, orderID, svc.lastCreate.OrderID)
	assert.Equal(t, userID, svc.lastCreate.UserID)
	assert.Equal(t, "cnon:card-nonce", svc.lastCreate.SourceID)
}

func TestCreateRejectsMissingSource(t *testing.T) {
	svc := &stubPayments{}

	body := `{"orderId":"` + uuid.NewString() + `"}`
	req := userRequest(http.MethodPost, "/api/payment/create", body, uuid.New())
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSurfacesDuplicateConflict(t *testing.T) {
	svc := &stubPayments{createErr: pkgerrors.New(pkgerrors.CodeConflict, "payment already exists for order")}

	body := `{"orderId":"` + uuid.NewString() + `","sourceId":"cnon:card-nonce"}`
	req := userRequest(http.MethodPost, "/api/payment/create", body, uuid.New())
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestVerifyCompletesCheckout(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubCheckout{}

	body := `{"orderId":"` + orderID.String() + `"}`
	req := userRequest(http.MethodPost, "/api/payment/verify", body, userID)
	resp := httptest.NewRecorder()
	Verify(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.lastConfirm.OrderID)
	assert.Equal(t, userID, svc.lastConfirm.UserID)

	var envelope struct {
		Data struct {
			State string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, string(checkout.StateComplete), envelope.Data.State)
}

func TestVerifySurfacesGatewayFailure(t *testing.T) {
	svc := &stubCheckout{confirmErr: pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed")}

	body := `{"orderId":"` + uuid.NewString() + `"}`
	req := userRequest(http.MethodPost, "/api/payment/verify", body, uuid.New())
	resp := httptest.NewRecorder()
	Verify(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestVerifyRequiresUserContext(t *testing.T) {
	svc := &stubCheckout{}

	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"orderId":"`+uuid.NewString()+`"}`))
	resp := httptest.NewRecorder()
	Verify(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
