package http

import (
	"net/http"
	"time"

	"github.com/fjod/gamingmarket/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Sessions       *session.Manager
	Catalog        *CatalogHandler
	Cart           *CartHandler
	Checkout       *CheckoutHandler
	Support        *SupportHandler
	RequestTimeout time.Duration
	SessionMaxAge  time.Duration
	Log            *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, cfg.SessionMaxAge))

		r.Get("/", cfg.Catalog.Home)
		r.Get("/menu", cfg.Catalog.Menu)
		r.Get("/help", cfg.Catalog.Help)
		r.Get("/category/{slug}", cfg.Catalog.Category)
		r.Get("/products/{id}", cfg.Catalog.Product)
		r.Get("/search", cfg.Catalog.GetSearch)
		r.Put("/search", cfg.Catalog.SetSearch)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Patch("/items/{product_id}", cfg.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", cfg.Cart.RemoveItem)
		})

		r.Get("/toast", cfg.Cart.GetToast)
		r.Delete("/toast", cfg.Cart.DismissToast)

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", cfg.Checkout.Get)
			r.Delete("/", cfg.Checkout.Abandon)
			r.Post("/next", cfg.Checkout.Next)
			r.Post("/back", cfg.Checkout.Back)
			r.Put("/address", cfg.Checkout.EditAddress)
			r.Put("/card", cfg.Checkout.EditCard)
			r.Post("/touch/{field}", cfg.Checkout.Touch)
			r.Post("/place-order", cfg.Checkout.PlaceOrder)
		})
		r.Get("/order-success", cfg.Checkout.OrderSuccess)

		r.Get("/support", cfg.Support.IssueTypes)
		r.Post("/support", cfg.Support.Submit)
	})

	return r
}
