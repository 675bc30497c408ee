package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shittu-qudus/BLACKSFIT/internal/catalog"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
)

type RouterConfig struct {
	Registry       *Registry
	Catalog        *catalog.Catalog
	Bootstrap      *gateway.Bootstrap
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) chi.Router {
	productHandler := NewProductHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.Catalog)
	checkoutHandler := NewCheckoutHandler(cfg.Bootstrap)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.Registry.Middleware)

		r.Get("/products", productHandler.List)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{productID}/increment", cartHandler.Increment)
			r.Post("/items/{productID}/decrement", cartHandler.Decrement)
			r.Delete("/items/{productID}", cartHandler.Remove)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/ready", checkoutHandler.Ready)
			r.Get("/status", checkoutHandler.Status)
			r.Post("/", checkoutHandler.Begin)
			r.Post("/callback", checkoutHandler.Callback)
			r.Post("/close", checkoutHandler.Close)
		})
	})

	return r
}
