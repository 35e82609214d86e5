package optimization

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"

	"github.com/usdevault/yield-engine/internal/modules/market"
)

// DefaultRiskFreeRate is the annualized risk-free rate used in the Sharpe objective.
const DefaultRiskFreeRate = 0.03

// penaltyWeight drives the quadratic penalty for the sum-to-one equality.
const penaltyWeight = 1000.0

// weightTolerance is the accepted violation of the sum and bound invariants.
const weightTolerance = 1e-6

// Allocation is the solver output: protocol weights in registry order.
// Fallback is set when the solver did not converge and equal weighting was
// substituted. Availability over precision: callers always get an allocation.
type Allocation struct {
	Weights  []float64
	Fallback bool
}

// SharpeOptimizer solves the max-Sharpe allocation problem.
//
// Mathematical formulation:
//   - Objective: maximize (μ'w - r_f) / sqrt(w'Σw)
//   - Constraint: Σw = 1 (quadratic penalty)
//   - Bounds: MinAllocation ≤ w_i ≤ MaxSingleAllocation (projection)
//
// The optimizer holds no mutable state, so a single instance can serve
// concurrent requests.
type SharpeOptimizer struct {
	riskFreeRate float64
	log          zerolog.Logger
}

// NewSharpeOptimizer creates a new max-Sharpe optimizer.
func NewSharpeOptimizer(riskFreeRate float64, log zerolog.Logger) *SharpeOptimizer {
	return &SharpeOptimizer{
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize solves for the max-Sharpe weights under the given constraints.
//
// Any failure mode (infeasible bounds, solver error, non-convergence, bound
// violation after normalization) falls back to equal weighting rather than
// returning an error; the engine must never answer "no allocation".
func (o *SharpeOptimizer) Optimize(state market.State, cons Constraints) Allocation {
	n := len(state.ExpectedReturns)
	if n == 0 {
		return Allocation{Weights: []float64{}, Fallback: true}
	}

	equal := equalWeights(n)
	if !cons.Feasible(n) {
		o.log.Warn().
			Int("num_protocols", n).
			Float64("max_single_allocation", cons.MaxSingleAllocation).
			Msg("Infeasible bounds - falling back to equal weighting")
		return Allocation{Weights: equal, Fallback: true}
	}

	mu := state.ExpectedReturns
	lower := MinAllocation
	upper := cons.MaxSingleAllocation

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			xProj := projectToBounds(x, lower, upper)

			var excess, variance float64
			for i := 0; i < n; i++ {
				excess += mu[i] * xProj[i]
				for j := 0; j < n; j++ {
					variance += xProj[i] * xProj[j] * state.Covariance.At(i, j)
				}
			}
			excess -= o.riskFreeRate
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			sum := 0.0
			for i := 0; i < n; i++ {
				sum += xProj[i]
			}

			obj := -excess / stdDev
			obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)
			return obj
		},
		Grad: func(grad, x []float64) {
			xProj := projectToBounds(x, lower, upper)

			var excess, variance float64
			for i := 0; i < n; i++ {
				excess += mu[i] * xProj[i]
				for j := 0; j < n; j++ {
					variance += xProj[i] * xProj[j] * state.Covariance.At(i, j)
				}
			}
			excess -= o.riskFreeRate
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * state.Covariance.At(i, j) * xProj[j]
				}
				grad[i] = -mu[i]/stdDev + excess*dVariance/(2*stdDev*stdDev*stdDev)
			}

			sum := 0.0
			for i := 0; i < n; i++ {
				sum += xProj[i]
			}
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1.0)
			}
		},
	}

	initial := make([]float64, n)
	copy(initial, equal)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	}
	if err != nil || !converged(result.Status) {
		o.log.Warn().
			Err(err).
			Msg("Solver did not converge - falling back to equal weighting")
		return Allocation{Weights: equal, Fallback: true}
	}

	weights, ok := repairWeights(result.X, lower, upper)
	if !ok {
		o.log.Warn().
			Floats64("solver_weights", result.X).
			Msg("Could not restore weight invariants - falling back to equal weighting")
		return Allocation{Weights: equal, Fallback: true}
	}

	return Allocation{Weights: weights}
}

// repairWeights clamps solver output to its bounds and redistributes the
// sum-to-one residual across the weights that still have slack. The penalty
// formulation leaves a small residual, so this is a defensive cleanup, not a
// projection of an arbitrary point.
func repairWeights(x []float64, lower, upper float64) ([]float64, bool) {
	weights := projectToBounds(x, lower, upper)

	for iter := 0; iter < 16; iter++ {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		residual := 1.0 - sum
		if math.Abs(residual) <= weightTolerance {
			return weights, true
		}

		free := 0
		for _, w := range weights {
			if (residual > 0 && w < upper) || (residual < 0 && w > lower) {
				free++
			}
		}
		if free == 0 {
			return nil, false
		}

		share := residual / float64(free)
		for i, w := range weights {
			if (residual > 0 && w < upper) || (residual < 0 && w > lower) {
				weights[i] = math.Max(lower, math.Min(upper, w+share))
			}
		}
	}

	return nil, false
}

// Sharpe computes the ex-ante Sharpe ratio of the given weights.
func (o *SharpeOptimizer) Sharpe(weights []float64, state market.State) float64 {
	excess := state.PortfolioReturn(weights) - o.riskFreeRate
	stdDev := math.Sqrt(math.Max(state.PortfolioVariance(weights), 1e-10))
	return excess / stdDev
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	default:
		return false
	}
}

func equalWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

func projectToBounds(x []float64, lower, upper float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(lower, math.Min(upper, x[i]))
	}
	return proj
}
