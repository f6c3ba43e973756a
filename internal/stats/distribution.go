package stats

import "slices"

// Distribution summarises a sample with the quantiles used across reports.
type Distribution struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Median  float64 `json:"median"`
	P70     float64 `json:"p70"`
	P85     float64 `json:"p85"`
	P95     float64 `json:"p95"`
	Max     float64 `json:"max"`
	IQR     float64 `json:"iqr"`      // P75-P25
	Inner80 float64 `json:"inner_80"` // P90-P10
}

// NewDistribution computes quantiles over values, rounded to one decimal.
// An empty sample yields the zero Distribution.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Distribution{
		Count:   len(sorted),
		Min:     round1(sorted[0]),
		Median:  round1(CalculateMedianContinuous(sorted)),
		P70:     round1(Percentile(sorted, 0.70)),
		P85:     round1(Percentile(sorted, 0.85)),
		P95:     round1(Percentile(sorted, 0.95)),
		Max:     round1(sorted[len(sorted)-1]),
		IQR:     round1(Percentile(sorted, 0.75) - Percentile(sorted, 0.25)),
		Inner80: round1(Percentile(sorted, 0.90) - Percentile(sorted, 0.10)),
	}
}
