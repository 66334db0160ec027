package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickbite-dev/quickbite-backend/api/controllers"
	cartcontrollers "github.com/quickbite-dev/quickbite-backend/api/controllers/cart"
	ordercontrollers "github.com/quickbite-dev/quickbite-backend/api/controllers/orders"
	paymentcontrollers "github.com/quickbite-dev/quickbite-backend/api/controllers/payments"
	trackingcontrollers "github.com/quickbite-dev/quickbite-backend/api/controllers/tracking"
	"github.com/quickbite-dev/quickbite-backend/api/middleware"
	cartsvc "github.com/quickbite-dev/quickbite-backend/internal/cart"
	checkoutsvc "github.com/quickbite-dev/quickbite-backend/internal/checkout"
	ordersvc "github.com/quickbite-dev/quickbite-backend/internal/orders"
	paysvc "github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/internal/tracking"
	"github.com/quickbite-dev/quickbite-backend/pkg/config"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
	"github.com/quickbite-dev/quickbite-backend/pkg/redis"
)

type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           *redis.Client
	MetricsHandler  http.Handler
	Cart            cartsvc.Service
	Checkout        checkoutsvc.Service
	Orders          ordersvc.Service
	Payments        paysvc.Service
	TrackingHub     *tracking.Hub
	LocationIngest  *tracking.Publisher
	TrackingMetrics *metrics.TrackingMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		readiness := map[string]controllers.Pinger{}
		if deps.DB != nil {
			readiness["database"] = deps.DB
		}
		if deps.Redis != nil {
			readiness["redis"] = deps.Redis
		}
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// The tracking socket is public; clients join rooms by order id the same
	// way the web frontend always has.
	r.Get("/ws/track", trackingcontrollers.Stream(deps.TrackingHub, deps.TrackingMetrics, logg))

	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(deps.Cart, logg))
			r.Post("/add", cartcontrollers.Add(deps.Cart, logg))
			r.Post("/increase-qty", cartcontrollers.IncreaseQty(deps.Cart, logg))
			r.Post("/decrease-qty", cartcontrollers.DecreaseQty(deps.Cart, logg))
			r.Post("/remove", cartcontrollers.Remove(deps.Cart, logg))
			r.Delete("/clear", cartcontrollers.Clear(deps.Cart, logg))
		})

		r.Route("/order", func(r chi.Router) {
			r.Post("/place-order", ordercontrollers.PlaceOrder(deps.Checkout, logg))
			r.Get("/my-orders", ordercontrollers.MyOrders(deps.Orders, logg))
			r.Get("/get-order/{id}", ordercontrollers.GetOrder(deps.Orders, logg))
			r.Patch("/update-status/{id}", ordercontrollers.UpdateStatus(deps.Orders, logg))
			r.Post("/assign-agent/{id}", ordercontrollers.AssignAgent(deps.Orders, logg))
			r.Post("/location/{id}", ordercontrollers.ReportLocation(deps.LocationIngest, logg))
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/create", paymentcontrollers.Create(deps.Payments, logg))
			r.Post("/verify", paymentcontrollers.Verify(deps.Checkout, logg))
		})
	})

	return r
}
