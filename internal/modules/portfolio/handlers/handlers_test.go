package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usdevault/yield-engine/internal/modules/market"
	"github.com/usdevault/yield-engine/internal/modules/optimization"
	"github.com/usdevault/yield-engine/internal/modules/portfolio"
	"github.com/usdevault/yield-engine/internal/modules/registry"
)

func setupTestHandler() *Handler {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	reg := registry.New()
	rng := rand.New(rand.NewSource(42))
	generator := market.NewGenerator(rng, market.DefaultReturnNoiseSigma, market.DefaultCorrelationScale, log)
	optimizer := optimization.NewSharpeOptimizer(optimization.DefaultRiskFreeRate, log)
	service := portfolio.NewService(reg, generator, optimizer, rng, log)
	return NewHandler(service, reg, log)
}

func TestHandleOptimize(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/optimize?type=Balanced", nil)
	w := httptest.NewRecorder()

	handler.HandleOptimize(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Contains(t, response, "apy")
	assert.Contains(t, response, "sharpe_ratio")

	allocations, ok := response["allocations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, allocations, 4)

	historical, ok := response["historical"].([]interface{})
	require.True(t, ok)
	assert.Len(t, historical, portfolio.HistoricalDays)
}

func TestHandleProtocols(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/protocols", nil)
	w := httptest.NewRecorder()

	handler.HandleProtocols(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Protocols []registry.ProtocolSpec `json:"protocols"`
	}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	require.Len(t, response.Protocols, 4)
	assert.Equal(t, "Strata Finance", response.Protocols[0].Name)
	assert.Equal(t, 12.5, response.Protocols[0].BaseAPY)
}

func TestHandleRebalance(t *testing.T) {
	handler := setupTestHandler()

	requestBody := map[string]interface{}{
		"vault_type": "Conservative",
		"current_allocations": []map[string]interface{}{
			{"name": "Strata Finance", "value": 90.0},
		},
	}
	bodyBytes, _ := json.Marshal(requestBody)

	req := httptest.NewRequest("POST", "/api/rebalance", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	handler.HandleRebalance(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Contains(t, response, "plan_id")
	assert.Contains(t, response, "new_allocations")
	assert.Contains(t, response, "trades_needed")
	assert.Contains(t, response, "expected_apy")
}

func TestHandleRebalance_InvalidBody(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("POST", "/api/rebalance", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.HandleRebalance(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.Contains(t, response, "error")
}

func TestHandleRiskMetrics(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/risk-metrics?type=Conservative", nil)
	w := httptest.NewRecorder()

	handler.HandleRiskMetrics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var metrics portfolio.RiskMetrics
	err := json.NewDecoder(w.Body).Decode(&metrics)
	require.NoError(t, err)

	assert.Equal(t, 3.2, metrics.RiskScore)
	assert.Equal(t, "20.0%", metrics.VolatilityEstimate)
}
