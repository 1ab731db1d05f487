package http

import (
	"net/http"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Services struct {
	Carts    CartStore
	Checkout service.CheckoutService
	Orders   OrderReader
	Catalog  CatalogAdmin
}

func NewRouter(svc Services, ids identity.Provider, log *zap.Logger, timeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(svc.Carts, log)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, log)
	ordersHandler := NewOrdersHandler(svc.Orders, log)
	adminHandler := NewAdminHandler(svc.Catalog, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware(ids))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/count", cartHandler.CountItems)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{line_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{line_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Put("/games/{id}", adminHandler.SaveGame)
			r.Put("/games/{id}/stock", adminHandler.SetStock(domain.KindGame))
			r.Delete("/games/{id}", adminHandler.DeleteProduct(domain.KindGame))
			r.Put("/hardware/{id}", adminHandler.SaveHardware)
			r.Put("/hardware/{id}/stock", adminHandler.SetStock(domain.KindHardware))
			r.Delete("/hardware/{id}", adminHandler.DeleteProduct(domain.KindHardware))
			r.Post("/restock", adminHandler.Restock)
			r.Get("/low-stock", adminHandler.LowStock)
		})
	})

	return r
}
