// Package market derives a simulated market model from the protocol registry.
package market

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/usdevault/yield-engine/internal/modules/registry"
)

// Default model parameters.
const (
	DefaultReturnNoiseSigma = 0.02 // stddev of the simulated market drift
	DefaultCorrelationScale = 0.5  // cross-protocol correlation scaling constant
)

// State holds the per-request market model, aligned to registry order.
// It is rebuilt fresh on every call and never cached.
type State struct {
	ExpectedReturns []float64
	Covariance      *mat.SymDense
}

// RandSource provides the random draws for market simulation. *rand.Rand
// satisfies it; the process-wide default delegates to math/rand's locked
// global source, which is safe for concurrent requests.
type RandSource interface {
	NormFloat64() float64
	Float64() float64
}

type globalRand struct{}

// Monte Carlo style simulation doesn't require crypto-grade randomness.
//nolint:gosec // G404
func (globalRand) NormFloat64() float64 { return rand.NormFloat64() }

//nolint:gosec // G404
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultSource returns the shared process-wide random source.
func DefaultSource() RandSource { return globalRand{} }

// Generator builds MarketStates from the registry plus a stochastic perturbation.
type Generator struct {
	rng        RandSource
	noiseSigma float64
	corrScale  float64
	log        zerolog.Logger
}

// NewGenerator creates a market model generator. Tests pass a seeded
// *rand.Rand to make generated states deterministic.
func NewGenerator(rng RandSource, noiseSigma, corrScale float64, log zerolog.Logger) *Generator {
	return &Generator{
		rng:        rng,
		noiseSigma: noiseSigma,
		corrScale:  corrScale,
		log:        log.With().Str("component", "market").Logger(),
	}
}

// Generate builds a fresh market state for the given registry.
//
// Expected returns are the nominal yields perturbed by zero-mean Gaussian
// noise. The covariance matrix uses each protocol's squared risk factor as
// variance and a scaled product of risk factors as cross-covariance, which is
// symmetric and positive semi-definite by construction for scale factors in
// [0, 1).
func (g *Generator) Generate(reg *registry.Registry) State {
	protocols := reg.Protocols()
	n := len(protocols)
	if n == 0 {
		return State{ExpectedReturns: []float64{}}
	}

	returns := make([]float64, n)
	for i, p := range protocols {
		returns[i] = p.BaseAPY/100.0 + g.rng.NormFloat64()*g.noiseSigma
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		cov.SetSym(i, i, protocols[i].RiskFactor*protocols[i].RiskFactor)
		for j := i + 1; j < n; j++ {
			cov.SetSym(i, j, protocols[i].RiskFactor*protocols[j].RiskFactor*g.corrScale)
		}
	}

	g.log.Debug().
		Int("num_protocols", n).
		Floats64("expected_returns", returns).
		Msg("Generated market state")

	return State{ExpectedReturns: returns, Covariance: cov}
}

// ValidateCovariance checks that the covariance matrix admits a Cholesky
// factorization, i.e. is symmetric positive definite. Callers tuning the
// correlation scale or risk factors must verify this still holds.
func (s State) ValidateCovariance() error {
	if s.Covariance == nil {
		return fmt.Errorf("market state has no covariance matrix")
	}
	var chol mat.Cholesky
	if !chol.Factorize(s.Covariance) {
		return fmt.Errorf("covariance matrix is not positive definite")
	}
	return nil
}

// PortfolioReturn computes w·μ for the given weights.
func (s State) PortfolioReturn(weights []float64) float64 {
	var total float64
	for i, w := range weights {
		total += w * s.ExpectedReturns[i]
	}
	return total
}

// PortfolioVariance computes wᵀΣw for the given weights.
func (s State) PortfolioVariance(weights []float64) float64 {
	var variance float64
	for i := range weights {
		for j := range weights {
			variance += weights[i] * weights[j] * s.Covariance.At(i, j)
		}
	}
	return variance
}
