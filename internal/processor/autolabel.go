package processor

import (
	"math"

	"github.com/linuxmatters/okng/internal/labels"
)

// ThresholdRatio converts a 0-100 percentage into the ratio used by AutoLabel.
func ThresholdRatio(percent int) float64 {
	return float64(percent) / 100.0
}

// RelativeChange is |cur-prev|/prev, the signal AutoLabel thresholds.
//
// Fallbacks:
//   - prev <= 0, NaN or +Inf: there is no usable reference, so the change is 0.
//   - cur NaN or ±Inf with a usable prev: the change is +Inf.
func RelativeChange(prev, cur float64) float64 {
	if !(prev > 0) || math.IsInf(prev, 1) {
		return 0
	}
	if math.IsNaN(cur) || math.IsInf(cur, 0) {
		return math.Inf(1)
	}
	return math.Abs(cur-prev) / prev
}

// Changes returns the relative change of every value from its predecessor.
// Element 0 is always 0.
func Changes(values []float64) []float64 {
	changes := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		changes[i] = RelativeChange(values[i-1], values[i])
	}
	return changes
}

// AutoLabel marks segment i as NG when its metric moved by at least ratio
// relative to segment i-1. The first segment has nothing to compare against and
// is always OK. A zero change is never NG, even with a ratio of 0, so a steady
// signal stays OK at every threshold.
//
// Only adjacent segments are compared. A slow drift that never jumps by ratio in
// a single step stays OK however far it wanders.
func AutoLabel(values []float64, ratio float64) []labels.Label {
	out := make([]labels.Label, len(values))
	for i, change := range Changes(values) {
		if i > 0 && change > 0 && change >= ratio {
			out[i] = labels.NG
		} else {
			out[i] = labels.OK
		}
	}
	return out
}
