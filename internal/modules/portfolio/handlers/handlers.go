// Package handlers provides HTTP handlers for allocation operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/usdevault/yield-engine/internal/modules/portfolio"
	"github.com/usdevault/yield-engine/internal/modules/registry"
)

// Handler handles allocation HTTP requests
type Handler struct {
	service  *portfolio.Service
	registry *registry.Registry
	log      zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *portfolio.Service, reg *registry.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		registry: reg,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// RebalanceRequest represents a request to compute rebalancing trades
type RebalanceRequest struct {
	VaultType          string                      `json:"vault_type"`
	CurrentAllocations []portfolio.PriorAllocation `json:"current_allocations"`
}

// HandleOptimize handles GET /api/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	profile := profileParam(r)

	result, err := h.service.Optimize(profile)
	if err != nil {
		h.log.Error().Err(err).Str("profile", profile).Msg("Optimization failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"apy":          result.APY,
		"allocations":  result.Allocations,
		"sharpe_ratio": result.SharpeRatio,
		"historical":   h.service.HistoricalSeries(portfolio.HistoricalDays),
	})
}

// HandleProtocols handles GET /api/protocols
func (h *Handler) HandleProtocols(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"protocols": h.registry.Protocols(),
	})
}

// HandleRebalance handles POST /api/rebalance
func (h *Handler) HandleRebalance(w http.ResponseWriter, r *http.Request) {
	var req RebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode rebalance request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.VaultType == "" {
		req.VaultType = "Balanced"
	}

	plan, err := h.service.Rebalance(req.VaultType, req.CurrentAllocations)
	if err != nil {
		h.log.Error().Err(err).Str("profile", req.VaultType).Msg("Rebalance failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan_id":         plan.PlanID,
		"new_allocations": plan.NewAllocations,
		"trades_needed":   plan.TradesNeeded,
		"expected_apy":    plan.ExpectedAPY,
	})
}

// HandleRiskMetrics handles GET /api/risk-metrics
func (h *Handler) HandleRiskMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.RiskMetrics(profileParam(r)))
}

// profileParam extracts the risk profile selector, defaulting to Balanced.
func profileParam(r *http.Request) string {
	profile := r.URL.Query().Get("type")
	if profile == "" {
		return "Balanced"
	}
	return profile
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
