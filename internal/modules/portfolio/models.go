package portfolio

// ProtocolAllocation is one row of an allocation result. Value is the weight
// and APY the expected yield, both in percent.
type ProtocolAllocation struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	APY   float64 `json:"apy"`
}

// AllocationResult is the optimizer output exposed to callers.
type AllocationResult struct {
	APY         string               `json:"apy"` // formatted, e.g. "14.23%"
	Allocations []ProtocolAllocation `json:"allocations"`
	SharpeRatio float64              `json:"sharpe_ratio"`
}

// PriorAllocation is a caller-supplied current holding, value in percent.
// The list must be in registry order: rebalancing matches prior to target
// positionally, not by name.
type PriorAllocation struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Trade is a single rebalancing instruction.
type Trade struct {
	Protocol      string  `json:"protocol"`
	Action        string  `json:"action"` // "increase" or "decrease"
	AmountPercent float64 `json:"amount_percent"`
}

// RebalancePlan is the output of a rebalance computation.
type RebalancePlan struct {
	PlanID         string               `json:"plan_id"`
	NewAllocations []ProtocolAllocation `json:"new_allocations"`
	TradesNeeded   []Trade              `json:"trades_needed"`
	ExpectedAPY    string               `json:"expected_apy"`
}

// RiskMetrics aggregates risk statistics over the registry for a profile.
type RiskMetrics struct {
	RiskScore          float64 `json:"risk_score"`
	AvgProtocolRisk    float64 `json:"avg_protocol_risk"`
	MaxProtocolRisk    float64 `json:"max_protocol_risk"`
	MinProtocolRisk    float64 `json:"min_protocol_risk"`
	VolatilityEstimate string  `json:"volatility_estimate"` // formatted, e.g. "20.0%"
}

// HistoricalPoint is one day of the synthetic performance series. The series
// is presentation-only and never feeds back into the optimization.
type HistoricalPoint struct {
	Date string  `json:"date"`
	APY  float64 `json:"apy"`
	TVL  int64   `json:"tvl"`
}
