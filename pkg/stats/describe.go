package stats

import (
	"math"
	"sort"
)

// Summary holds the descriptive statistics of one column. Every field but
// Count is NaN when the column has no values.
type Summary struct {
	Count float64
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Values lists the summary in Statistics order.
func (s Summary) Values() []float64 {
	return []float64{s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// Describe summarizes values, skipping NaN. Std is the population standard
// deviation; quantiles interpolate linearly between closest ranks.
func Describe(values []float64) Summary {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	n := len(xs)
	if n == 0 {
		nan := math.NaN()
		return Summary{Count: 0, Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}
	sort.Float64s(xs)

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(n)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}

	return Summary{
		Count: float64(n),
		Mean:  mean,
		Std:   math.Sqrt(ss / float64(n)),
		Min:   xs[0],
		Q25:   quantile(xs, 0.25),
		Q50:   quantile(xs, 0.50),
		Q75:   quantile(xs, 0.75),
		Max:   xs[n-1],
	}
}

// quantile expects sorted, non-empty xs.
func quantile(xs []float64, q float64) float64 {
	pos := q * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return xs[lo]
	}
	frac := pos - float64(lo)
	return xs[lo] + (xs[hi]-xs[lo])*frac
}
