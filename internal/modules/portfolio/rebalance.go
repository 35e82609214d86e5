package portfolio

import (
	"math"

	"github.com/google/uuid"
)

// TradeThresholdPercent is the materiality threshold for rebalancing trades.
// A weight difference must exceed one percentage point to produce a trade.
const TradeThresholdPercent = 1.0

// Rebalance computes a fresh target allocation for the profile and diffs it
// against the caller's current holdings.
//
// Prior and target allocations are matched positionally. Callers must supply
// prior allocations in registry order; a missing index counts as a zero prior
// weight.
func (s *Service) Rebalance(profile string, current []PriorAllocation) (RebalancePlan, error) {
	target, err := s.Optimize(profile)
	if err != nil {
		return RebalancePlan{}, err
	}

	trades := diffAllocations(target.Allocations, current)

	s.log.Info().
		Str("profile", profile).
		Int("trades_needed", len(trades)).
		Msg("Computed rebalance plan")

	return RebalancePlan{
		PlanID:         uuid.NewString(),
		NewAllocations: target.Allocations,
		TradesNeeded:   trades,
		ExpectedAPY:    target.APY,
	}, nil
}

// diffAllocations emits a trade per protocol whose target weight differs from
// the prior weight by more than the materiality threshold.
func diffAllocations(target []ProtocolAllocation, prior []PriorAllocation) []Trade {
	trades := make([]Trade, 0, len(target))
	for i, allocation := range target {
		priorWeight := 0.0
		if i < len(prior) {
			priorWeight = prior[i].Value
		}

		diff := allocation.Value - priorWeight
		if math.Abs(diff) <= TradeThresholdPercent {
			continue
		}

		action := "increase"
		if diff < 0 {
			action = "decrease"
		}
		trades = append(trades, Trade{
			Protocol:      allocation.Name,
			Action:        action,
			AmountPercent: math.Abs(diff),
		})
	}
	return trades
}
