package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/optimize", h.HandleOptimize)
	r.Get("/protocols", h.HandleProtocols)
	r.Post("/rebalance", h.HandleRebalance)
	r.Get("/risk-metrics", h.HandleRiskMetrics)
}
