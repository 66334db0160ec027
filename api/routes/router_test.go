package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/quickbite-dev/quickbite-backend/internal/cart"
	checkoutsvc "github.com/quickbite-dev/quickbite-backend/internal/checkout"
	ordersvc "github.com/quickbite-dev/quickbite-backend/internal/orders"
	paysvc "github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/internal/tracking"
	pkgAuth "github.com/quickbite-dev/quickbite-backend/pkg/auth"
	"github.com/quickbite-dev/quickbite-backend/pkg/config"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) Add(context.Context, string, cartsvc.Item) (cartsvc.AddOutcome, error) {
	return cartsvc.AddOutcomeInserted, nil
}

func (stubCartService) IncreaseQty(context.Context, string, string) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) DecreaseQty(context.Context, string, string) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) Remove(context.Context, string, string) (*cartsvc.View, error) {
	return &cartsvc.View{}, nil
}

func (stubCartService) Clear(context.Context, string) error {
	return nil
}

func (stubCartService) Get(context.Context, string) (*cartsvc.View, error) {
	return &cartsvc.View{Items: []cartsvc.Item{}}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) PlaceOrder(context.Context, checkoutsvc.PlaceOrderInput) (*checkoutsvc.PlaceOrderResult, error) {
	return &checkoutsvc.PlaceOrderResult{State: checkoutsvc.StateComplete}, nil
}

func (stubCheckoutService) ConfirmPayment(context.Context, checkoutsvc.ConfirmPaymentInput) (*checkoutsvc.ConfirmPaymentResult, error) {
	return &checkoutsvc.ConfirmPaymentResult{State: checkoutsvc.StateComplete}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Place(context.Context, ordersvc.PlaceInput) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{}, nil
}

func (stubOrdersService) ListForUser(context.Context, uuid.UUID) ([]ordersvc.DTO, error) {
	return []ordersvc.DTO{}, nil
}

func (stubOrdersService) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{}, nil
}

func (stubOrdersService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{}, nil
}

func (stubOrdersService) AssignAgent(context.Context, uuid.UUID, string, string) (*ordersvc.DTO, error) {
	return &ordersvc.DTO{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Create(context.Context, paysvc.CreateInput) (*paysvc.DTO, error) {
	return &paysvc.DTO{}, nil
}

func (stubPaymentsService) Verify(context.Context, paysvc.VerifyInput) (*paysvc.DTO, error) {
	return &paysvc.DTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "quickbite-auth"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{},
		Cart:        stubCartService{},
		Checkout:    stubCheckoutService{},
		Orders:      stubOrdersService{},
		Payments:    stubPaymentsService{},
		TrackingHub: tracking.NewHub(nil, nil),
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), uuid.New(), "Test User", time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/api/cart", "/api/order/my-orders"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token got %d", path, resp.Code)
		}
	}
}

func TestAPIGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/order/my-orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestCartRoutesAreWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d", resp.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, testConfig()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
