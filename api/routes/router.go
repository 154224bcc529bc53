package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cartsync/api/controllers"
	cartcontrollers "github.com/angelmondragon/cartsync/api/controllers/cart"
	"github.com/angelmondragon/cartsync/api/middleware"
	"github.com/angelmondragon/cartsync/internal/cartapi"
	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/metrics"
	"github.com/angelmondragon/cartsync/pkg/redis"
)

// NewRouter wires the Cart API. redisClient, httpMetrics and metricsHandler may be nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cartService cartapi.Service,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
	)

	deps := map[string]controllers.Pinger{"db": dbP, "redis": nil}
	var limiter middleware.RateLimiter
	if redisClient != nil {
		deps["redis"] = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Actor(cfg, logg))
		r.Use(middleware.RateLimit(cfg.Cart.RateLimit, cfg.Cart.RateWindow, limiter, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Post("/", cartcontrollers.CartUpsert(cartService, logg))
			r.Delete("/", cartcontrollers.CartDelete(cartService, logg))
		})
		r.Post("/calculate-selection/", cartcontrollers.CalculateSelection(cartService, logg))
		r.Post("/calculate-selection", cartcontrollers.CalculateSelection(cartService, logg))
	})

	return r
}
