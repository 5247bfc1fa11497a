package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/metrics"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/middleware"
)

type Deps struct {
	Logger *slog.Logger

	Catalog  CatalogService
	Carts    CartOpener
	Checkout CheckoutService
	Orders   OrderReader
	Admins   AdminService
	Tokens   auth.TokenVerifier
	Webhook  http.Handler
	Metrics  *metrics.Metrics

	TaxRate          decimal.Decimal
	CORSAllowOrigins []string
	SecureCookies    bool
	RequestTimeout   time.Duration
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	if d.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if d.Webhook != nil {
			r.Method(http.MethodPost, "/webhooks/clerk", d.Webhook)
		} else {
			r.Post("/webhooks/clerk", func(w http.ResponseWriter, r *http.Request) {
				middleware.WriteError(w, r, http.StatusServiceUnavailable, "webhooks are not configured")
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens, d.Logger))

			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(middleware.CartSession(d.SecureCookies))

				r.Get("/cart", h.GetCart)
				r.Delete("/cart", h.ClearCart)
				r.Post("/cart/items", h.AddCartItem)
				r.Patch("/cart/items/{id}", h.UpdateCartItem)
				r.Delete("/cart/items/{id}", h.RemoveCartItem)

				r.With(middleware.RequireUser).Post("/checkout", h.Checkout)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Get("/orders", h.ListOrders)
				r.Get("/orders/{id}", h.GetOrder)
				r.Get("/admin/me", h.AdminStatus)
				r.Post("/admin/setup", h.SetupAdmin)
			})

			r.Route("/admin/products", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(d.Admins, d.Logger))
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Get("/{id}", h.GetProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
		})
	})

	return r
}
