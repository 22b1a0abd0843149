package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianprocure/storefront-backend/api/controllers"
	webhookcontrollers "github.com/meridianprocure/storefront-backend/api/controllers/webhooks"
	"github.com/meridianprocure/storefront-backend/api/middleware"
	"github.com/meridianprocure/storefront-backend/internal/cart"
	"github.com/meridianprocure/storefront-backend/internal/catalog"
	checkoutsvc "github.com/meridianprocure/storefront-backend/internal/checkout"
	"github.com/meridianprocure/storefront-backend/internal/quotes"
	stripewebhook "github.com/meridianprocure/storefront-backend/internal/webhooks/stripe"
	"github.com/meridianprocure/storefront-backend/pkg/config"
	"github.com/meridianprocure/storefront-backend/pkg/db"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
	"github.com/meridianprocure/storefront-backend/pkg/metrics"
	"github.com/meridianprocure/storefront-backend/pkg/redis"
	"github.com/meridianprocure/storefront-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	carts *cart.Store,
	catalogService catalog.Service,
	checkoutService checkoutsvc.Service,
	quoteService quotes.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	mets *metrics.StorefrontMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, mets, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/locations", controllers.ListLocations())
		r.Get("/catalog/{locationSlug}", controllers.GetCatalog(catalogService, logg))

		r.With(middleware.RateLimitByIP(
			redisClient,
			"quotes",
			int64(cfg.QuoteRate.IPLimit),
			cfg.QuoteRate.Window,
			logg,
		)).Post("/quotes", controllers.SubmitQuote(quoteService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(carts))
				r.Post("/location", controllers.SelectLocation(carts, catalogService, logg))
				r.Post("/items", controllers.AddCartItem(carts, logg))
				r.Patch("/items/{productId}", controllers.UpdateCartItem(carts, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(carts))
			})

			r.Post("/checkout", controllers.CreateCheckout(checkoutService, logg))
			r.Get("/checkout/session", controllers.GetCheckoutSession(checkoutService, logg))
		})
	})

	return r
}
