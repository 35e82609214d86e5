package portfolio

import (
	"math"
	"time"
)

// HistoricalDays is the default length of the synthetic performance series.
const HistoricalDays = 30

// HistoricalSeries generates a synthetic daily performance series: a slow
// sinusoidal APY drift plus uniform noise, and steadily growing TVL. It is
// cosmetic chart data for the frontend, not an input to the optimizer.
func (s *Service) HistoricalSeries(days int) []HistoricalPoint {
	series := make([]HistoricalPoint, 0, days)
	base := time.Now().AddDate(0, 0, -days)

	for i := 0; i < days; i++ {
		date := base.AddDate(0, 0, i)
		apy := 15.5 + math.Sin(float64(i)*0.2)*3 + uniform(s.rng.Float64(), -1, 1)
		tvl := 1500000 + float64(i)*50000 + uniform(s.rng.Float64(), -100000, 100000)

		series = append(series, HistoricalPoint{
			Date: date.Format("2006-01-02"),
			APY:  math.Round(apy*100) / 100,
			TVL:  int64(tvl),
		})
	}

	return series
}

// uniform maps a [0,1) draw onto [lo, hi).
func uniform(draw, lo, hi float64) float64 {
	return lo + draw*(hi-lo)
}
