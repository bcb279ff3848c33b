package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tapshop/tapshop-backend/api/controllers"
	"github.com/tapshop/tapshop-backend/api/middleware"
	cartsvc "github.com/tapshop/tapshop-backend/internal/cart"
	deliverysvc "github.com/tapshop/tapshop-backend/internal/delivery"
	ordersvc "github.com/tapshop/tapshop-backend/internal/orders"
	productsvc "github.com/tapshop/tapshop-backend/internal/products"
	sellersvc "github.com/tapshop/tapshop-backend/internal/sellers"
	"github.com/tapshop/tapshop-backend/pkg/config"
	"github.com/tapshop/tapshop-backend/pkg/db"
	"github.com/tapshop/tapshop-backend/pkg/logger"
	"github.com/tapshop/tapshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	sellerService sellersvc.Service,
	productService productsvc.Service,
	cartService cartsvc.Service,
	deliveryService deliverysvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	quotePolicy := middleware.RateLimitPolicy{
		Name:   "quote",
		Window: cfg.RateLimit.QuoteWindow,
		Limit:  cfg.RateLimit.QuoteLimit,
	}
	checkoutPolicy := middleware.RateLimitPolicy{
		Name:   "checkout",
		Window: cfg.RateLimit.CheckoutWindow,
		Limit:  cfg.RateLimit.CheckoutLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Post("/sellers/register", controllers.PublicSellerRegister(sellerService, cfg.JWT, logg))
		r.Get("/shops/{slug}", controllers.PublicShop(sellerService, productService, logg))
		r.Get("/orders/{orderNumber}", controllers.PublicOrderStatus(orderService, logg))
		r.With(middleware.RateLimit(quotePolicy, redisClient, logg)).
			Post("/delivery/quote", controllers.PublicDeliveryQuote(deliveryService, logg))
		r.With(middleware.RateLimit(checkoutPolicy, redisClient, logg)).
			Post("/orders", controllers.PublicCreateOrder(orderService, logg))

		r.Route("/cart/{sellerId}", func(r chi.Router) {
			r.Use(middleware.BuyerToken(logg))
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Put("/", controllers.CartPut(cartService, logg))
			r.Delete("/", controllers.CartDelete(cartService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/sellers", func(r chi.Router) {
			r.Get("/me", controllers.SellerMe(sellerService, logg))
			r.Put("/me", controllers.SellerUpdateMe(sellerService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.SellerListProducts(productService, logg))
			r.Post("/", controllers.SellerCreateProduct(productService, logg))
			r.Patch("/{productId}", controllers.SellerUpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.SellerDeleteProduct(productService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.SellerListOrders(orderService, logg))
			r.Get("/{orderId}", controllers.SellerGetOrder(orderService, logg))
			r.Post("/{orderId}/confirm", controllers.SellerConfirmOrder(orderService, logg))
			r.Post("/{orderId}/ship", controllers.SellerShipOrder(orderService, logg))
			r.Post("/{orderId}/deliver", controllers.SellerDeliverOrder(orderService, logg))
			r.Post("/{orderId}/cancel", controllers.SellerCancelOrder(orderService, logg))
		})
	})

	return r
}
