package chart

import "math"

// Origin is the point both axes pass through.
type Origin struct {
	X, Y int
}

// PlanOrigin picks an origin within the inner 90% of a w x h canvas.
func PlanOrigin(r *Rand, w, h int) Origin {
	lo, hi := innerBounds(w)
	x := r.IntRange(lo, hi)
	lo, hi = innerBounds(h)
	y := r.IntRange(lo, hi)
	return Origin{X: x, Y: y}
}

// innerBounds returns the integer range [round(0.05n), round(0.95n)] pulled
// inward where rounding would step outside [0.05n, 0.95n].
func innerBounds(n int) (int, int) {
	minF, maxF := 0.05*float64(n), 0.95*float64(n)
	lo := int(math.Round(minF))
	if float64(lo) < minF {
		lo++
	}
	hi := int(math.Round(maxF))
	if float64(hi) > maxF {
		hi--
	}
	return lo, hi
}
