package features

import "math"

// Series helpers shared by the detectors. Undefined positions (not enough
// history) are NaN; callers must check with IsDefined before comparing.

// IsDefined reports whether v is a usable number.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrDefault returns v when defined and def otherwise.
func OrDefault(v, def float64) float64 {
	if IsDefined(v) {
		return v
	}
	return def
}

// Last returns the final element or NaN for an empty slice.
func Last(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return xs[len(xs)-1]
}

// PctChange computes (x[i] - x[i-periods]) / x[i-periods]. The first
// `periods` entries are undefined.
func PctChange(xs []float64, periods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < periods || xs[i-periods] == 0 {
			out[i] = math.NaN()
			continue
		}
		prev := xs[i-periods]
		out[i] = (xs[i] - prev) / prev
	}
	return out
}

// EMA computes a recursive exponential moving average seeded with the first
// value: ema[i] = a*x[i] + (1-a)*ema[i-1], a = 2/(span+1).
func EMA(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RollingMean is the trailing mean over `window` values, skipping undefined
// ones and requiring at least minPeriods of them.
func RollingMean(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := max(0, i-window+1)
		sum, n := 0.0, 0
		for _, v := range xs[lo : i+1] {
			if IsDefined(v) {
				sum += v
				n++
			}
		}
		if n < minPeriods || n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingStd is the trailing sample standard deviation over `window` values.
func RollingStd(xs []float64, window, minPeriods int) []float64 {
	return rollingStd(xs, window, minPeriods, 0)
}

// CenteredRollingStd labels each window at its centre: position i covers
// [i-window+1+off, i+off] with off = (window-1)/2, clipped to the series.
func CenteredRollingStd(xs []float64, window, minPeriods int) []float64 {
	return rollingStd(xs, window, minPeriods, (window-1)/2)
}

func rollingStd(xs []float64, window, minPeriods, offset int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		lo := max(0, i-window+1+offset)
		hi := min(len(xs)-1, i+offset)
		vals := make([]float64, 0, window)
		for j := lo; j <= hi; j++ {
			if IsDefined(xs[j]) {
				vals = append(vals, xs[j])
			}
		}
		if len(vals) < max(2, minPeriods) {
			out[i] = math.NaN()
			continue
		}
		out[i] = SampleStd(vals)
	}
	return out
}

// Mean of the defined values; NaN when there are none.
func Mean(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range xs {
		if IsDefined(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// MaxAbs of the defined values; NaN when there are none.
func MaxAbs(xs []float64) float64 {
	out := math.NaN()
	for _, v := range xs {
		if !IsDefined(v) {
			continue
		}
		if a := math.Abs(v); math.IsNaN(out) || a > out {
			out = a
		}
	}
	return out
}

// PopulationStd is the ddof=0 standard deviation of the defined values.
func PopulationStd(xs []float64) float64 {
	return stdDev(xs, 0)
}

// SampleStd is the ddof=1 standard deviation of the defined values.
func SampleStd(xs []float64) float64 {
	return stdDev(xs, 1)
}

func stdDev(xs []float64, ddof int) float64 {
	mean := Mean(xs)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	ss, n := 0.0, 0
	for _, v := range xs {
		if IsDefined(v) {
			d := v - mean
			ss += d * d
			n++
		}
	}
	if n-ddof <= 0 {
		return math.NaN()
	}
	return math.Sqrt(ss / float64(n-ddof))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
