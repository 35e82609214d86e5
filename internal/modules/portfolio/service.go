// Package portfolio orchestrates the allocation pipeline and derives caller
// facing metrics from solver output.
package portfolio

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/usdevault/yield-engine/internal/modules/market"
	"github.com/usdevault/yield-engine/internal/modules/optimization"
	"github.com/usdevault/yield-engine/internal/modules/registry"
)

// FallbackSharpe is reported when the solver fell back to equal weighting,
// signaling that the optimization did not confidently converge.
const FallbackSharpe = 1.5

// Service runs the registry → market model → constraints → solver pipeline.
// Each call is stateless and independent; the only shared state is the
// immutable registry.
type Service struct {
	registry  *registry.Registry
	generator *market.Generator
	optimizer *optimization.SharpeOptimizer
	rng       market.RandSource
	log       zerolog.Logger
}

// NewService creates a new portfolio service.
func NewService(
	reg *registry.Registry,
	generator *market.Generator,
	optimizer *optimization.SharpeOptimizer,
	rng market.RandSource,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry:  reg,
		generator: generator,
		optimizer: optimizer,
		rng:       rng,
		log:       log.With().Str("component", "portfolio").Logger(),
	}
}

// Optimize computes the recommended allocation for a risk profile.
func (s *Service) Optimize(profile string) (AllocationResult, error) {
	state := s.generator.Generate(s.registry)
	if err := state.ValidateCovariance(); err != nil {
		return AllocationResult{}, fmt.Errorf("invalid market model: %w", err)
	}

	cons := optimization.ProfileConstraints(profile)
	allocation := s.optimizer.Optimize(state, cons)

	protocols := s.registry.Protocols()
	allocations := make([]ProtocolAllocation, len(protocols))
	for i, p := range protocols {
		allocations[i] = ProtocolAllocation{
			Name:  p.Name,
			Value: allocation.Weights[i] * 100,
			APY:   state.ExpectedReturns[i] * 100,
		}
	}

	result := AllocationResult{
		APY:         fmt.Sprintf("%.2f%%", state.PortfolioReturn(allocation.Weights)*100),
		Allocations: allocations,
		SharpeRatio: s.sharpeRatio(allocation, state),
	}

	s.log.Info().
		Str("profile", profile).
		Bool("fallback", allocation.Fallback).
		Str("portfolio_apy", result.APY).
		Msg("Computed allocation")

	return result, nil
}

// sharpeRatio reports the solution's Sharpe ratio, or the fixed default when
// the solver fell back to equal weighting.
func (s *Service) sharpeRatio(allocation optimization.Allocation, state market.State) float64 {
	if allocation.Fallback {
		return FallbackSharpe
	}
	return s.optimizer.Sharpe(allocation.Weights, state)
}
