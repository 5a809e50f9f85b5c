package chart

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
)

// densityPoints is the number of points a density curve is sampled at.
const densityPoints = 128

// maxAutoBins caps automatic histogram binning.
const maxAutoBins = 50

// maxBins caps binning from an explicit bin step.
const maxBins = 1000

// sortedCopy returns xs sorted ascending without touching xs.
func sortedCopy(xs []float64) []float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return s
}

// bandwidth returns Silverman's rule-of-thumb bandwidth for sorted
// data: 0.9 * min(sd, IQR/1.34) * n^-1/5. A zero spread falls back to
// the other measure, then to a tenth of the magnitude of the data.
func bandwidth(sorted []float64) float64 {
	spread := 0.0
	if sd := stat.StdDev(sorted, nil); sd > 0 {
		spread = sd
	}
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	if iqr > 0 && (spread == 0 || iqr/1.34 < spread) {
		spread = iqr / 1.34
	}
	if spread == 0 {
		spread = math.Max(math.Abs(sorted[0])*0.1, 1)
	}
	return 0.9 * spread * math.Pow(float64(len(sorted)), -0.2)
}

// density evaluates a Gaussian kernel density estimate of xs over the
// data range widened by three bandwidths on each side.
func density(xs []float64) plotter.XYs {
	if len(xs) == 0 {
		return nil
	}
	sorted := sortedCopy(xs)
	h := bandwidth(sorted)
	lo, hi := sorted[0]-3*h, sorted[len(sorted)-1]+3*h
	if !isFinite(h) || !isFinite(lo) || !isFinite(hi) {
		return nil
	}
	grid := make([]float64, densityPoints)
	floats.Span(grid, lo, hi)

	norm := 1 / (float64(len(sorted)) * h * math.Sqrt(2*math.Pi))
	pts := make(plotter.XYs, len(grid))
	for i, x := range grid {
		var sum float64
		for _, v := range sorted {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		pts[i].X = x
		pts[i].Y = sum * norm
	}
	return pts
}

// binCount picks the number of histogram bins: span/step, at most
// maxBins, when step is positive, otherwise the square root of the
// sample size.
func binCount(xs []float64, step float64) int {
	if len(xs) == 0 {
		return 1
	}
	if step > 0 {
		n := math.Ceil((floats.Max(xs) - floats.Min(xs)) / step)
		if math.IsNaN(n) || n > maxBins {
			return maxBins
		}
		return max(1, int(n))
	}
	return min(maxAutoBins, max(1, int(math.Ceil(math.Sqrt(float64(len(xs)))))))
}

// finiteSpan reports whether xs is non-empty and max-min does not
// overflow. Axes cannot be laid out over an infinite range.
func finiteSpan(xs []float64) bool {
	return len(xs) > 0 && isFinite(floats.Max(xs)-floats.Min(xs))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
