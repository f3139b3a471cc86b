package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yourusername/promotion-engine/internal/api/handlers"
)

// NewRouter builds the HTTP router for the promotion-service
func NewRouter(db *sql.DB, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	promotionHandler := handlers.NewPromotionHandler(db, logger)

	// Checkout-facing endpoints
	r.Route("/orders", func(r chi.Router) {
		r.Post("/evaluate", promotionHandler.EvaluateOrder)
	})
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/applicable", promotionHandler.GetApplicablePromotions)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/promotions", promotionHandler.CreatePromotion)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
