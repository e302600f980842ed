package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hedgerow/hedgerow-backend/api/controllers"
	"github.com/hedgerow/hedgerow-backend/api/middleware"
	"github.com/hedgerow/hedgerow-backend/api/responses"
	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/checkout"
	"github.com/hedgerow/hedgerow-backend/pkg/config"
	pkgerrors "github.com/hedgerow/hedgerow-backend/pkg/errors"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/metrics"
)

// Dependencies are the services the router mounts.
type Dependencies struct {
	Carts       cart.Service
	Checkout    checkout.Service
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Ready       []controllers.Dependency
	Clock       func() time.Time
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethod, "method not allowed"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	clock := deps.Clock
	if clock == nil {
		loc := cfg.Delivery.Location
		if loc == nil {
			loc = time.UTC
		}
		clock = func() time.Time { return time.Now().In(loc) }
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/delivery", func(r chi.Router) {
			r.Get("/days", controllers.DeliveryDays(clock, logg))
			r.Get("/slots", controllers.DeliverySlots(cfg.Delivery.SlotLabels()))
		})
		r.Get("/pricing/price", controllers.PricingPrice(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartClient(middleware.CartClientOptions{
				CookieName: cfg.Cart.ClientCookieName,
				MaxAge:     cfg.Cart.ClientCookieMaxAge,
				Secure:     cfg.App.IsProd(),
			}, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Post("/actions", controllers.CartAction(deps.Carts, logg))
				r.Get("/quote", controllers.CartQuote(deps.Checkout, logg))
			})
			r.Post("/checkout", controllers.CheckoutSubmit(deps.Checkout, logg))
		})
	})

	return r
}
