package registry

// ProtocolSpec describes a yield-bearing protocol available to the optimizer.
// TVLCapacity is advisory only; the solver does not enforce it.
type ProtocolSpec struct {
	Name        string  `json:"name"`
	BaseAPY     float64 `json:"base_apy"`     // nominal yield, percent
	RiskFactor  float64 `json:"risk_factor"`  // in (0, 1]
	TVLCapacity float64 `json:"tvl_capacity"` // total value locked capacity
}
