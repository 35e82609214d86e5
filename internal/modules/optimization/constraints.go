// Package optimization provides the constrained allocation solver.
package optimization

// Risk profile selectors accepted from callers.
const (
	ProfileConservative = "Conservative"
	ProfileBalanced     = "Balanced"
	ProfileAggressive   = "Aggressive"
)

// MinAllocation is the lower bound applied to every protocol weight so that
// no protocol is ever fully excluded from the allocation.
const MinAllocation = 0.05

// Constraints translates a risk profile into solver constraints.
type Constraints struct {
	RiskTolerance       float64
	MaxSingleAllocation float64
}

// ProfileConstraints maps a risk profile selector to its constraints.
//
// Anything that is not Conservative or Balanced takes the Aggressive branch,
// including unrecognized strings. Callers have always relied on this
// fall-through, so it is preserved rather than rejected as invalid input.
func ProfileConstraints(profile string) Constraints {
	switch profile {
	case ProfileConservative:
		return Constraints{RiskTolerance: 0.1, MaxSingleAllocation: 0.4}
	case ProfileBalanced:
		return Constraints{RiskTolerance: 0.2, MaxSingleAllocation: 0.6}
	default:
		return Constraints{RiskTolerance: 0.4, MaxSingleAllocation: 0.8}
	}
}

// RiskScore returns the fixed risk score for a profile. The score is a
// per-profile constant, not derived from the market state.
func RiskScore(profile string) float64 {
	switch profile {
	case ProfileConservative:
		return 3.2
	case ProfileBalanced:
		return 5.8
	default:
		return 8.1
	}
}

// Feasible reports whether n assets can satisfy the sum-to-one equality
// within the per-asset bounds [MinAllocation, MaxSingleAllocation].
func (c Constraints) Feasible(n int) bool {
	if n == 0 {
		return false
	}
	return float64(n)*MinAllocation <= 1.0 && float64(n)*c.MaxSingleAllocation >= 1.0
}
