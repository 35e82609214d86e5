package portfolio

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/usdevault/yield-engine/internal/modules/optimization"
)

// RiskMetrics aggregates risk statistics over the registry.
//
// The risk score is a fixed constant per profile, an intentional
// simplification: it describes the profile, not the current market state.
func (s *Service) RiskMetrics(profile string) RiskMetrics {
	factors := s.registry.RiskFactors()
	avg := stat.Mean(factors, nil)

	return RiskMetrics{
		RiskScore:          optimization.RiskScore(profile),
		AvgProtocolRisk:    avg,
		MaxProtocolRisk:    floats.Max(factors),
		MinProtocolRisk:    floats.Min(factors),
		VolatilityEstimate: fmt.Sprintf("%.1f%%", avg*100),
	}
}
