// Package registry holds the static catalog of yield protocols.
//
// The registry is the single source of truth for protocol identity and ordering.
// Every vector and matrix in the engine (expected returns, covariance, weights)
// is aligned to the order returned by Protocols. It is built once at startup and
// never mutated afterwards, so it is safe to share across concurrent requests.
package registry

// Registry is the immutable, ordered protocol catalog.
type Registry struct {
	protocols []ProtocolSpec
}

// New creates the registry with the default protocol set.
func New() *Registry {
	return NewWithProtocols([]ProtocolSpec{
		{Name: "Strata Finance", BaseAPY: 12.5, RiskFactor: 0.15, TVLCapacity: 1000000},
		{Name: "Terminal Finance", BaseAPY: 15.8, RiskFactor: 0.25, TVLCapacity: 800000},
		{Name: "Ethereal Finance", BaseAPY: 18.2, RiskFactor: 0.35, TVLCapacity: 600000},
		{Name: "USDe Staking", BaseAPY: 8.5, RiskFactor: 0.05, TVLCapacity: 2000000},
	})
}

// NewWithProtocols creates a registry from an explicit protocol list.
// The slice is copied; callers cannot mutate the registry afterwards.
func NewWithProtocols(protocols []ProtocolSpec) *Registry {
	list := make([]ProtocolSpec, len(protocols))
	copy(list, protocols)
	return &Registry{protocols: list}
}

// Protocols returns the ordered protocol list.
func (r *Registry) Protocols() []ProtocolSpec {
	list := make([]ProtocolSpec, len(r.protocols))
	copy(list, r.protocols)
	return list
}

// Len returns the number of registered protocols.
func (r *Registry) Len() int {
	return len(r.protocols)
}

// Names returns the protocol names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.protocols))
	for i, p := range r.protocols {
		names[i] = p.Name
	}
	return names
}

// RiskFactors returns the protocol risk factors in registry order.
func (r *Registry) RiskFactors() []float64 {
	factors := make([]float64, len(r.protocols))
	for i, p := range r.protocols {
		factors[i] = p.RiskFactor
	}
	return factors
}
