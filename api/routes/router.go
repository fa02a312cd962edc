package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artisanmarket/storefront/api/controllers"
	"github.com/artisanmarket/storefront/api/middleware"
	"github.com/artisanmarket/storefront/internal/cart"
	"github.com/artisanmarket/storefront/internal/checkout"
	"github.com/artisanmarket/storefront/internal/emails"
	"github.com/artisanmarket/storefront/internal/orders"
	product "github.com/artisanmarket/storefront/internal/products"
	"github.com/artisanmarket/storefront/internal/reviews"
	"github.com/artisanmarket/storefront/pkg/config"
	"github.com/artisanmarket/storefront/pkg/logger"
	"github.com/artisanmarket/storefront/pkg/metrics"
	pkgredis "github.com/artisanmarket/storefront/pkg/redis"
)

// Store is the redis surface the HTTP layer needs for idempotency and
// rate limiting.
type Store interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimitStore
}

// Deps are the services and infrastructure mounted on the router. Nil
// services answer 500 on their routes; a nil Gatherer disables /metrics.
type Deps struct {
	Products product.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
	Reviews  reviews.Service
	Emails   *emails.Sender

	Store       Store
	HTTPMetrics *metrics.HTTP
	Gatherer    prometheus.Gatherer
	Pingers     map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Notices(),
	)

	sessionPolicy := middleware.NewRateLimitPolicy("session", cfg.RateLimit.Window, cfg.RateLimit.SessionIPLimit, 0, "")
	reviewPolicy := middleware.NewRateLimitPolicy("reviews", cfg.RateLimit.Window, cfg.RateLimit.ReviewIPLimit, cfg.RateLimit.ReviewEmailLimit, "customerEmail")
	idempotent := middleware.Idempotency(deps.Store, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(sessionPolicy, deps.Store, logg)).Post("/session", controllers.SessionCreate(cfg.Session, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, deps.Products, logg))
				r.Patch("/items", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutFetch(deps.Checkout, logg))
				r.Delete("/", controllers.CheckoutDiscard(deps.Checkout, logg))
				r.Put("/shipping", controllers.CheckoutShipping(deps.Checkout, logg))
				r.Put("/payment", controllers.CheckoutPayment(deps.Checkout, logg))
				r.Post("/advance", controllers.CheckoutAdvance(deps.Checkout, logg))
				r.Post("/back", controllers.CheckoutBack(deps.Checkout, logg))
				r.With(idempotent).Post("/orders", controllers.CheckoutPlaceOrder(deps.Checkout, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/featured", controllers.ProductFeatured(deps.Products, logg))
			r.Get("/recommended", controllers.ProductRecommended(deps.Products, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.ProductFetch(deps.Products, logg))
				r.Get("/related", controllers.ProductRelated(deps.Products, logg))
				r.Get("/reviews", controllers.ReviewListByProduct(deps.Reviews, logg))
				r.Get("/reviews/eligibility", controllers.ReviewEligibility(deps.Reviews, logg))
			})
		})

		r.Get("/orders/{orderId}", controllers.OrderFetch(deps.Orders, logg))

		r.With(middleware.RateLimit(reviewPolicy, deps.Store, logg), idempotent).Post("/reviews", controllers.ReviewCreate(deps.Reviews, logg))
		r.Route("/reviews/{reviewId}", func(r chi.Router) {
			r.Patch("/", controllers.ReviewUpdate(deps.Reviews, logg))
			r.Delete("/", controllers.ReviewDelete(deps.Reviews, logg))
			r.Post("/helpful", controllers.ReviewHelpful(deps.Reviews, logg))
		})

		r.With(idempotent).Post("/functions/send-order-status-email", controllers.SendOrderStatusEmail(deps.Emails, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAPIKey(cfg.Admin.APIKey, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Patch("/{orderId}", controllers.AdminOrderUpdate(deps.Orders, logg))
			r.With(idempotent).Patch("/{orderId}/status", controllers.AdminOrderStatus(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.AdminOrderDelete(deps.Orders, logg))
		})
	})

	return r
}
