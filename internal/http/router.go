// Package http is the storefront's HTTP surface.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Backend is the part of the backend client served directly, without a
// session.
type Backend interface {
	Catalog
	Orders
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter wires every storefront route. The returned handler is
// instrumented with otelhttp.
func NewRouter(b Backend, sessions Sessions, cfg RouterConfig, log *zap.Logger) http.Handler {
	products := NewProductHandler(b)
	carts := NewCartHandler()
	checkout := NewCheckoutHandler()
	orders := NewOrdersHandler(b, log)
	users := NewSessionHandler(sessions, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get(failurePath, checkout.Failure)

	// The payment processor returns the browser here with only session_id.
	// The client-side return view must call this route with the user's
	// bearer token; a bare navigation is answered 401.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(sessions))
		r.Get("/checkout/success", checkout.Success)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(withOptionalToken)
			r.Get("/products", products.ListProducts)
			r.Get("/products/{product_id}", products.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(sessions))

			r.Get("/me", users.Me)
			r.Post("/logout", users.Logout)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Post("/items", carts.AddItem)
				r.Post("/reload", carts.Reload)
				r.Delete("/items/{product_id}", carts.RemoveItem)
				r.Post("/items/{product_id}/undo", carts.UndoRemoval)
			})

			r.Post("/checkout", checkout.Checkout)
			r.Get("/orders", orders.ListOrders)

			r.Route("/admin", func(r chi.Router) {
				r.Use(AdminOnly)
				r.Get("/orders", orders.ListAllOrders)
				r.Put("/orders/{order_id}", orders.UpdateOrderStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
